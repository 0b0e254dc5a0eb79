package models

import (
	"time"

	"github.com/google/uuid"
)

// CitySave is a save slot: the sandbox city at the time of saving plus the
// persisted ordinance record.
// OrdinanceData holds the binary ordinance record exactly as the ordinance
// encoded it.
type CitySave struct {
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	CityName              string    `db:"city_name" json:"cityName"`
	OrdinanceData         []byte    `db:"ordinance_data" json:"-"`
	Funds                 int64     `db:"funds" json:"funds"`
	ID                    uuid.UUID `db:"id" json:"id"`
	Year                  uint32    `db:"year" json:"year"`
	Month                 uint32    `db:"month" json:"month"`
	LowWealthPopulation   int32     `db:"low_wealth_population" json:"lowWealthPopulation"`
	MedWealthPopulation   int32     `db:"med_wealth_population" json:"medWealthPopulation"`
	HighWealthPopulation  int32     `db:"high_wealth_population" json:"highWealthPopulation"`
	ResidentialPopulation int32     `db:"residential_population" json:"residentialPopulation"`
	OrdinanceID           uint32    `db:"ordinance_id" json:"ordinanceId"`
}

// TableName returns the table holding save slots.
func (CitySave) TableName() string {
	return "city_saves"
}

// OrdinanceSize returns the length of the persisted ordinance record.
func (s CitySave) OrdinanceSize() int {
	return len(s.OrdinanceData)
}
