package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/internal/transport"
)

const (
	statsPath          = "/api/stats"
	recentAbnormalPath = "/api/recent-abnormal"
	patientsPath       = "/api/patients"

	DefaultRecentLimit = 10
)

var placeholders = map[models.Page]string{
	models.PageDashboard: "Unable to load statistics",
	models.PageAbnormal:  "Unable to load recent abnormal results",
	models.PagePatients:  "Unable to load patients",
}

// Binder fetches the data a page needs when it is activated
type Binder struct {
	api         Querier
	recentLimit int
	now         func() time.Time
}

func NewBinder(api Querier, recentLimit int) *Binder {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Binder{api: api, recentLimit: recentLimit, now: time.Now}
}

// Activate performs the single fetch page needs. Pages without remote
// data return immediately without a request.
func (b *Binder) Activate(ctx context.Context, page models.Page) models.PageData {
	data := models.PageData{Page: page, FetchedAt: b.now()}

	var err error
	switch page {
	case models.PageDashboard:
		data.Stats, err = b.Stats(ctx)
	case models.PageAbnormal:
		data.Abnormal, err = b.RecentAbnormal(ctx)
	case models.PagePatients:
		data.Patients, err = b.Patients(ctx)
	default:
		return data
	}

	if err != nil {
		log.Printf("activate %s: %v", page, err)
		data.Err = err
		data.Placeholder = placeholders[page]
	}
	return data
}

// Stats fetches the aggregate statistics
func (b *Binder) Stats(ctx context.Context) (*models.Stats, error) {
	resp, err := b.fetch(ctx, statsPath)
	if err != nil {
		return nil, err
	}
	var stats models.Stats
	if err := resp.Decode(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentAbnormal fetches the latest abnormal results
func (b *Binder) RecentAbnormal(ctx context.Context) ([]models.AbnormalResult, error) {
	resp, err := b.fetch(ctx, fmt.Sprintf("%s?limit=%d", recentAbnormalPath, b.recentLimit))
	if err != nil {
		return nil, err
	}
	var body struct {
		Results []models.AbnormalResult `json:"results"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}

// Patients fetches the patient directory
func (b *Binder) Patients(ctx context.Context) ([]models.Patient, error) {
	resp, err := b.fetch(ctx, patientsPath)
	if err != nil {
		return nil, err
	}
	var body struct {
		Patients []models.Patient `json:"patients"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	return body.Patients, nil
}

// fetch issues a GET and converts payload-level failures into an
// *transport.ApplicationError.
func (b *Binder) fetch(ctx context.Context, path string) (*transport.Response, error) {
	resp, err := b.api.Call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	env := resp.Envelope()
	if resp.StatusCode >= http.StatusBadRequest || (env.Success != nil && !*env.Success) {
		return nil, &transport.ApplicationError{StatusCode: resp.StatusCode, Message: env.Reason()}
	}
	return resp, nil
}
