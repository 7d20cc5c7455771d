// internal/service/snapshot.go
package service

import (
	"github.com/mbakri/cellwatch-backend/internal/model"
	"github.com/mbakri/cellwatch-backend/internal/repository"
)

// SnapshotService assembles the aggregated campaign state that is pushed
// to live subscribers.
type SnapshotService struct {
	CampaignRepo    repository.CampaignRepositoryInterface
	MeasurementRepo repository.MeasurementRepositoryInterface
}

// CampaignSnapshot builds the live frame payload for one campaign:
// campaign record, member devices, measurement sets tagged by technology
// and the derived counts.
func (s *SnapshotService) CampaignSnapshot(campaignID int) (*model.Snapshot, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	devices, err := s.CampaignRepo.MemberDevices(campaignID)
	if err != nil {
		return nil, err
	}

	gsm, err := s.MeasurementRepo.ListGSMByCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	lte, err := s.MeasurementRepo.ListLTEByCampaign(campaignID)
	if err != nil {
		return nil, err
	}

	threat, real := 0, 0
	for i := range gsm {
		gsm[i].Type = "gsm"
		if gsm[i].Status {
			real++
		} else {
			threat++
		}
	}
	for i := range lte {
		lte[i].Type = "lte"
		if lte[i].Status {
			real++
		} else {
			threat++
		}
	}

	return &model.Snapshot{
		Campaign:       campaign,
		Devices:        devices,
		GSMData:        gsm,
		LTEData:        lte,
		TotalCount:     len(gsm) + len(lte),
		GSMTotal:       len(gsm),
		LTETotal:       len(lte),
		ThreatBTSCount: threat,
		RealBTSCount:   real,
	}, nil
}
