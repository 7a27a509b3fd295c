package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestSelect_NumbersPlaceholdersAcrossConditions(t *testing.T) {
	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := Select("public_id", "home_team_name").
		From("matches").
		Where(
			Eq("league_public_id", "l1"),
			IsNull("deleted_at"),
			Search(" 100%_win ", "home_team_name", "away_team_name"),
			Gte("match_date", from),
		).
		OrderBy("match_date DESC", "public_id").
		Limit(10).
		Offset(20).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT public_id, home_team_name FROM matches WHERE league_public_id = $1 AND deleted_at IS NULL AND (home_team_name ILIKE $2 OR away_team_name ILIKE $3) AND match_date >= $4 ORDER BY match_date DESC, public_id LIMIT 10 OFFSET 20"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	wantArgs := []any{"l1", `%100\%\_win%`, `%100\%\_win%`, from}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelect_RequiresTableAndColumns(t *testing.T) {
	if _, _, err := Select().From("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for missing columns")
	}
	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestIn_EmptyMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("users").Where(In("role", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT id FROM users WHERE FALSE" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %v", query, args)
	}
}

func TestInsert_WithSuffix(t *testing.T) {
	query, args, err := InsertInto("leagues").
		Columns("public_id", "name").
		Values("u1", "Liga 1").
		Values("u2", "Premier League").
		Suffix("ON CONFLICT (public_id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO leagues (public_id, name) VALUES ($1, $2), ($3, $4) ON CONFLICT (public_id) DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 4 || args[3] != "Premier League" {
		t.Fatalf("unexpected args: %v", args)
	}

	if _, _, err := InsertInto("leagues").Columns("a", "b").Values(1).ToSQL(); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestUpdate_SetExprConsumesArgsInOrder(t *testing.T) {
	query, args, err := Update("users").
		SetExpr("tasks_triggered", "tasks_triggered + ?", 1).
		Set("status", "active").
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "u1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE users SET tasks_triggered = tasks_triggered + $1, status = $2, updated_at = NOW() WHERE public_id = $3"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if !reflect.DeepEqual(args, []any{1, "active", "u1"}) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		PublicID string `db:"public_id"`
		Name     string `db:"name,omitempty"`
		Skip     string `db:"-"`
		Untagged string
		internal string
	}

	query, args, err := InsertModel("leagues", &row{PublicID: "l1", Name: "Premier League", Skip: "x", Untagged: "z", internal: "y"}, "")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	if query != "INSERT INTO leagues (public_id, name) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if !reflect.DeepEqual(args, []any{"l1", "Premier League"}) {
		t.Fatalf("unexpected args: %v", args)
	}

	if _, _, err := InsertModel("leagues", (*row)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertModel("leagues", 42, ""); err == nil {
		t.Fatalf("expected error for non struct model")
	}
}
