package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/stwalsh4118/city-lottery/internal/director"
	"github.com/stwalsh4118/city-lottery/internal/gzio"
	"github.com/stwalsh4118/city-lottery/internal/logger"
	"github.com/stwalsh4118/city-lottery/internal/models"
	"github.com/stwalsh4118/city-lottery/internal/ordinance"
	"github.com/stwalsh4118/city-lottery/internal/property"
	"github.com/stwalsh4118/city-lottery/internal/repository"
	"github.com/stwalsh4118/city-lottery/internal/sandbox"
)

// Service-level errors
var (
	ErrNoCity         = errors.New("no city is open")
	ErrCityOpen       = errors.New("a city is already open")
	ErrSaveNotFound   = errors.New("save not found")
	ErrCorruptSave    = errors.New("save data is corrupt")
	ErrNotActive      = errors.New("ordinance settings are not loaded")
	ErrBindFailed     = errors.New("ordinance could not be added to the city")
	ErrInvalidRequest = errors.New("invalid request")
)

// OpenCityRequest describes a new sandbox city.
type OpenCityRequest struct {
	Name       string
	Population sandbox.Population
	Year       uint32
	Month      uint32
}

// TierFactors are the per wealth tier income factors.
type TierFactors struct {
	Low  float32 `json:"low"`
	Med  float32 `json:"med"`
	High float32 `json:"high"`
}

// EffectStatus is one entry of the ordinance effects bag.
type EffectStatus struct {
	ID          uint32      `json:"id"`
	Description string      `json:"description,omitempty"`
	Kind        string      `json:"kind"`
	Value       interface{} `json:"value"`
}

// OrdinanceStatus is a snapshot of the lottery ordinance.
type OrdinanceStatus struct {
	ID                    uint32         `json:"id"`
	ClassID               string         `json:"clsid"`
	Name                  string         `json:"name"`
	Description           string         `json:"description"`
	YearFirstAvailable    uint32         `json:"yearFirstAvailable"`
	Initialized           bool           `json:"initialized"`
	Available             bool           `json:"available"`
	On                    bool           `json:"on"`
	Enabled               bool           `json:"enabled"`
	Bound                 bool           `json:"bound"`
	Deserialized          bool           `json:"deserialized"`
	IncomeOrdinance       bool           `json:"incomeOrdinance"`
	EnactmentIncome       int64          `json:"enactmentIncome"`
	RetracmentIncome      int64          `json:"retracmentIncome"`
	MonthlyConstantIncome int64          `json:"monthlyConstantIncome"`
	MonthlyAdjustedIncome int64          `json:"monthlyAdjustedIncome"`
	CurrentMonthlyIncome  int64          `json:"currentMonthlyIncome"`
	Factors               TierFactors    `json:"factors"`
	Effects               []EffectStatus `json:"effects"`
}

// CityStatus is a snapshot of the open sandbox city.
type CityStatus struct {
	Name                  string             `json:"name"`
	Year                  uint32             `json:"year"`
	Month                 uint32             `json:"month"`
	Population            sandbox.Population `json:"population"`
	ResidentialPopulation int32              `json:"residentialPopulation"`
	Funds                 int64              `json:"funds"`
}

// Status is the harness state.
type Status struct {
	Active    bool            `json:"active"`
	City      *CityStatus     `json:"city,omitempty"`
	Ordinance OrdinanceStatus `json:"ordinance"`
}

// CityService drives the director and a sandbox city. Calls are serialized,
// mirroring the single logic thread of the host.
type CityService interface {
	// Status returns the current harness state.
	Status() Status

	// Open creates a sandbox city and notifies the director.
	// Returns ErrCityOpen if a city is already open.
	Open(ctx context.Context, req OpenCityRequest) (Status, error)

	// Close notifies the director and discards the city.
	// Returns ErrNoCity if no city is open.
	Close(ctx context.Context) error

	// AdvanceMonth runs one monthly simulation tick.
	AdvanceMonth(ctx context.Context) (sandbox.MonthReport, error)

	// SetOn enacts or repeals the lottery.
	SetOn(ctx context.Context, on bool) (OrdinanceStatus, error)

	// SetAvailable offers or withdraws the lottery.
	SetAvailable(ctx context.Context, available bool) (OrdinanceStatus, error)

	// UpdatePopulation replaces the tier populations of the open city.
	UpdatePopulation(ctx context.Context, population sandbox.Population) (Status, error)

	// Save persists the open city and the lottery record.
	Save(ctx context.Context) (*models.CitySave, error)

	// Load replaces the open city with a saved one. The current city is kept
	// when the save cannot be decoded.
	// Returns ErrSaveNotFound or ErrCorruptSave.
	Load(ctx context.Context, id uuid.UUID) (Status, error)

	// ListSaves returns the most recent saves, newest first.
	ListSaves(ctx context.Context, limit int) ([]models.CitySave, error)
}

// cityService is the concrete implementation of CityService.
type cityService struct {
	mu       sync.Mutex
	director *director.Director
	repo     repository.SaveRepository
	log      *logger.Logger
	city     *sandbox.City
	strings  map[ordinance.StringKey]string
}

// NewCityService creates a new instance of CityService.
// strings are the localized string resources given to every sandbox city.
func NewCityService(d *director.Director, repo repository.SaveRepository, strings map[ordinance.StringKey]string, log *logger.Logger) CityService {
	if log == nil {
		log = logger.Nop()
	}
	return &cityService{
		director: d,
		repo:     repo,
		strings:  strings,
		log:      log.WithComponent("city_service"),
	}
}

func (s *cityService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status()
}

func (s *cityService) status() Status {
	status := Status{
		Active:    s.director.Active(),
		Ordinance: ordinanceStatus(s.director.Lottery()),
	}
	if s.city != nil {
		year, month := s.city.Date()
		status.City = &CityStatus{
			Name:                  s.city.Name(),
			Year:                  year,
			Month:                 month,
			Population:            s.city.Tiers(),
			ResidentialPopulation: s.city.Population(),
			Funds:                 s.city.Funds(),
		}
	}
	return status
}

func ordinanceStatus(l *ordinance.Lottery) OrdinanceStatus {
	low, med, high := l.TierFactors()
	status := OrdinanceStatus{
		ID:                    l.ID(),
		ClassID:               fmt.Sprintf("0x%08x", l.ID()),
		Name:                  l.Name(),
		Description:           l.Description(),
		YearFirstAvailable:    l.YearFirstAvailable(),
		Initialized:           l.IsInitialized(),
		Available:             l.IsAvailable(),
		On:                    l.IsOn(),
		Enabled:               l.IsEnabled(),
		Bound:                 l.IsBound(),
		Deserialized:          l.HaveDeserialized(),
		IncomeOrdinance:       l.IsIncomeOrdinance(),
		EnactmentIncome:       l.EnactmentIncome(),
		RetracmentIncome:      l.RetracmentIncome(),
		MonthlyConstantIncome: l.MonthlyConstantIncome(),
		MonthlyAdjustedIncome: l.MonthlyAdjustedIncome(),
		CurrentMonthlyIncome:  l.CurrentMonthlyIncome(),
		Factors:               TierFactors{Low: low, Med: med, High: high},
		Effects:               []EffectStatus{},
	}

	effects := l.Effects()
	effects.Each(func(r property.Record) {
		desc, _ := property.Describe(r.ID())
		status.Effects = append(status.Effects, EffectStatus{
			ID:          r.ID(),
			Description: desc,
			Kind:        r.Value().Kind().String(),
			Value:       r.Value().Interface(),
		})
	})
	return status
}

func (s *cityService) Open(ctx context.Context, req OpenCityRequest) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city != nil {
		return Status{}, ErrCityOpen
	}
	if !s.director.Active() {
		return Status{}, ErrNotActive
	}
	if req.Name == "" {
		return Status{}, fmt.Errorf("%w: city name is required", ErrInvalidRequest)
	}

	opts := []sandbox.Option{sandbox.WithLocalizedStrings(s.strings)}
	if req.Year != 0 {
		opts = append(opts, sandbox.WithDate(req.Year, req.Month))
	}
	city := sandbox.NewCity(req.Name, req.Population, opts...)

	if !s.director.PostCityInit(city) {
		s.log.Error("Failed to add the lottery to the city", ErrBindFailed, map[string]interface{}{
			"city": req.Name,
		})
		return Status{}, ErrBindFailed
	}
	s.city = city

	s.log.Info("City opened", map[string]interface{}{
		"city":       req.Name,
		"population": city.Population(),
	})
	return s.status(), nil
}

func (s *cityService) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return ErrNoCity
	}
	s.closeCity()
	return nil
}

func (s *cityService) closeCity() {
	name := s.city.Name()
	s.director.PreCityShutdown(s.city)
	s.city = nil

	s.log.Info("City closed", map[string]interface{}{"city": name})
}

func (s *cityService) AdvanceMonth(ctx context.Context) (sandbox.MonthReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return sandbox.MonthReport{}, ErrNoCity
	}

	report, err := s.city.AdvanceMonth()
	if err != nil {
		s.log.Error("Failed to simulate the month", err, nil)
		return report, fmt.Errorf("failed to advance month: %w", err)
	}

	s.log.Debug("Month advanced", map[string]interface{}{
		"year":  report.Year,
		"month": report.Month,
		"funds": report.Funds,
	})
	return report, nil
}

func (s *cityService) SetOn(ctx context.Context, on bool) (OrdinanceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return OrdinanceStatus{}, ErrNoCity
	}

	lottery := s.director.Lottery()
	lottery.SetOn(on)
	return ordinanceStatus(lottery), nil
}

func (s *cityService) SetAvailable(ctx context.Context, available bool) (OrdinanceStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return OrdinanceStatus{}, ErrNoCity
	}

	lottery := s.director.Lottery()
	lottery.SetAvailable(available)
	return ordinanceStatus(lottery), nil
}

func (s *cityService) UpdatePopulation(ctx context.Context, population sandbox.Population) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return Status{}, ErrNoCity
	}
	if population.Low < 0 || population.Med < 0 || population.High < 0 {
		return Status{}, fmt.Errorf("%w: population must not be negative", ErrInvalidRequest)
	}

	s.city.SetPopulation(population)
	return s.status(), nil
}

func (s *cityService) Save(ctx context.Context) (*models.CitySave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.city == nil {
		return nil, ErrNoCity
	}

	lottery := s.director.Lottery()
	var buf bytes.Buffer
	if err := lottery.Encode(gzio.NewWriter(&buf)); err != nil {
		return nil, fmt.Errorf("failed to encode ordinance: %w", err)
	}

	year, month := s.city.Date()
	tiers := s.city.Tiers()
	save := &models.CitySave{
		CityName:              s.city.Name(),
		Year:                  year,
		Month:                 month,
		LowWealthPopulation:   tiers.Low,
		MedWealthPopulation:   tiers.Med,
		HighWealthPopulation:  tiers.High,
		ResidentialPopulation: s.city.Population(),
		Funds:                 s.city.Funds(),
		OrdinanceID:           lottery.ID(),
		OrdinanceData:         buf.Bytes(),
	}

	if err := s.repo.Create(ctx, save); err != nil {
		s.log.Error("Failed to store save", err, map[string]interface{}{
			"city": save.CityName,
		})
		return nil, fmt.Errorf("failed to store save: %w", err)
	}

	s.log.Info("City saved", map[string]interface{}{
		"save_id": save.ID.String(),
		"city":    save.CityName,
		"bytes":   save.OrdinanceSize(),
	})
	return save, nil
}

func (s *cityService) Load(ctx context.Context, id uuid.UUID) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.director.Active() {
		return Status{}, ErrNotActive
	}

	save, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query save", err, map[string]interface{}{
			"save_id": id.String(),
		})
		return Status{}, fmt.Errorf("failed to query save: %w", err)
	}

	// Repository returns nil, nil when no save found - transform to domain error
	if save == nil {
		return Status{}, ErrSaveNotFound
	}

	lottery := s.director.Lottery()
	if save.OrdinanceID != lottery.ID() {
		return Status{}, fmt.Errorf("%w: unexpected ordinance 0x%08x", ErrCorruptSave, save.OrdinanceID)
	}

	// Check the record decodes before touching the open city
	if err := ordinance.NewLottery(nil).Decode(gzio.NewReader(bytes.NewReader(save.OrdinanceData))); err != nil {
		s.log.Warn("Save data is corrupt", map[string]interface{}{
			"save_id": id.String(),
			"error":   err.Error(),
		})
		return Status{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}

	if s.city != nil {
		s.closeCity()
	}

	if err := lottery.Decode(gzio.NewReader(bytes.NewReader(save.OrdinanceData))); err != nil {
		return Status{}, fmt.Errorf("%w: %v", ErrCorruptSave, err)
	}

	city := sandbox.NewCity(save.CityName, sandbox.Population{
		Low:  save.LowWealthPopulation,
		Med:  save.MedWealthPopulation,
		High: save.HighWealthPopulation,
	}, sandbox.WithDate(save.Year, save.Month), sandbox.WithFunds(save.Funds), sandbox.WithLocalizedStrings(s.strings))

	// The restored ordinance is part of the city before the director sees it
	if err := city.AddOrdinance(lottery); err != nil {
		return Status{}, fmt.Errorf("failed to restore ordinance: %w", err)
	}
	if !s.director.PostCityInit(city) {
		return Status{}, ErrBindFailed
	}
	s.city = city

	s.log.Info("City loaded", map[string]interface{}{
		"save_id": id.String(),
		"city":    save.CityName,
	})
	return s.status(), nil
}

func (s *cityService) ListSaves(ctx context.Context, limit int) ([]models.CitySave, error) {
	saves, err := s.repo.List(ctx, limit)
	if err != nil {
		s.log.Error("Failed to list saves", err, nil)
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	return saves, nil
}
