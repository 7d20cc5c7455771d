// internal/controller/device_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
)

type DeviceController struct {
	DeviceRepo repository.DeviceRepositoryInterface
}

// AddDevice upserts a device by serial number.
func (c *DeviceController) AddDevice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	serialNumber := r.PostFormValue("serial_number")
	ip := r.PostFormValue("ip")
	if serialNumber == "" || ip == "" {
		http.Error(w, "serial_number and ip are required", http.StatusBadRequest)
		return
	}

	device := &model.Device{
		SerialNumber: serialNumber,
		IP:           ip,
		IsConnected:  true,
		IsRunning:    false,
	}
	if lat, err := strconv.ParseFloat(r.PostFormValue("lat"), 64); err == nil {
		device.Lat = &lat
	}
	if long, err := strconv.ParseFloat(r.PostFormValue("long"), 64); err == nil {
		device.Long = &long
	}

	if err := c.DeviceRepo.UpsertBySerial(device); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Device added/updated successfully",
	})
}

func (c *DeviceController) ListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := c.DeviceRepo.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (c *DeviceController) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, err := strconv.Atoi(chi.URLParam(r, "device_id"))
	if err != nil {
		http.Error(w, "invalid device_id", http.StatusBadRequest)
		return
	}

	if err := c.DeviceRepo.Delete(deviceID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Device deleted successfully",
		"device_deleted": deviceID,
	})
}
