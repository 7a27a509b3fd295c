package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/domain/league"
)

type leagueTableModel struct {
	ID        int64          `db:"id"`
	PublicID  string         `db:"public_id"`
	Name      string         `db:"name"`
	Country   string         `db:"country"`
	Season    string         `db:"season"`
	Logo      sql.NullString `db:"logo"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Country   string    `db:"country"`
	Season    string    `db:"season"`
	Logo      *string   `db:"logo"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:        row.PublicID,
		Name:      row.Name,
		Country:   row.Country,
		Season:    row.Season,
		Logo:      stringFromNull(row.Logo),
		Status:    league.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
