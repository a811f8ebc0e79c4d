//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/imoveis/internal/adapters/postgres"
	"github.com/samirrijal/imoveis/internal/core/domain"
	"github.com/samirrijal/imoveis/internal/pkg/config"
)

func testDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return config.DefaultDatabaseURL
}

// setupTestDB connects to DATABASE_URL (or the local default) and applies the schema.
func setupTestDB(t *testing.T) *postgres.DB {
	dsn := testDSN()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := postgres.New(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Applying twice must be harmless.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	return db
}

func TestListingRepo_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewListingRepo(db)
	ctx := context.Background()

	tag := uuid.NewString()
	first := &domain.Listing{Title: "primeiro " + tag, Latitude: -23.5614, Longitude: -46.6559, Azimuth: 135.5, PhotoURL: "https://cdn/a.jpg"}
	second := &domain.Listing{Title: "segundo " + tag, Latitude: 1e-7, Longitude: -179.9999999, Azimuth: 0, PhotoURL: "https://cdn/b.jpg"}

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Error("expected created_at to be filled in")
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var got []domain.Listing
	for _, l := range all {
		if l.ID == first.ID || l.ID == second.ID {
			got = append(got, l)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected both listings back, got %d", len(got))
	}
	if got[0].ID != first.ID {
		t.Error("expected listings in id order")
	}
	if got[1].Latitude != second.Latitude || got[1].Longitude != second.Longitude {
		t.Errorf("coordinates changed on round trip: %+v", got[1])
	}
	if got[0].Title != first.Title || got[0].Azimuth != first.Azimuth || got[0].PhotoURL != first.PhotoURL {
		t.Errorf("fields changed on round trip: %+v", got[0])
	}

	// Every operation must hand its connection back.
	if n := db.Pool.Stat().AcquiredConns(); n != 0 {
		t.Errorf("expected no acquired connections, got %d", n)
	}
}

func TestListingRepo_CanceledContext(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewListingRepo(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.List(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if n := db.Pool.Stat().AcquiredConns(); n != 0 {
		t.Errorf("expected no acquired connections, got %d", n)
	}
}

// legacyTable is the table as the first deployment created it: nullable
// columns and no created_at.
const legacyTable = `
	CREATE TABLE imoveis (
		id           SERIAL PRIMARY KEY,
		titulo       VARCHAR,
		latitude     DOUBLE PRECISION,
		longitude    DOUBLE PRECISION,
		azimute      DOUBLE PRECISION,
		caminho_foto VARCHAR
	);
	CREATE INDEX ix_imoveis_titulo ON imoveis (titulo);
	CREATE INDEX ix_imoveis_id ON imoveis (id);
	INSERT INTO imoveis (titulo, latitude, longitude, azimute, caminho_foto)
	VALUES ('Casa antiga', -23.5614, -46.6559, 90, 'https://cdn/antiga.jpg'),
	       (NULL, -23.5615, -46.6560, NULL, NULL),
	       ('Sem coordenadas', NULL, NULL, 10, 'https://cdn/x.jpg');
`

func TestMigrate_UpgradesLegacyTable(t *testing.T) {
	ctx := context.Background()
	base := testDSN()

	admin, err := postgres.New(ctx, base, 1)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(admin.Close)

	schema := "legacy_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Pool.Exec(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.Pool.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
	})
	if _, err := admin.Pool.Exec(ctx, "SET search_path TO "+schema+"; "+legacyTable); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("DATABASE_URL must be a URL for this test: %v", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	db, err := postgres.New(ctx, u.String(), 2)
	if err != nil {
		t.Fatalf("connect legacy schema: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate legacy table: %v", err)
	}

	repo := postgres.NewListingRepo(db)
	created := &domain.Listing{Title: "Nova", Latitude: -23.56, Longitude: -46.65, Azimuth: 1, PhotoURL: "https://cdn/nova.jpg"}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("create on upgraded table: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list upgraded table: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 2 legacy rows with coordinates plus the new one, got %d: %+v", len(all), all)
	}
	if all[0].Title != "Casa antiga" || all[0].CreatedAt.IsZero() {
		t.Errorf("unexpected legacy row %+v", all[0])
	}
	if all[1].Title != "" || all[1].PhotoURL != "" || all[1].Azimuth != 0 {
		t.Errorf("expected NULLs read as zero values, got %+v", all[1])
	}
	if all[2].ID != created.ID || all[2].Title != "Nova" {
		t.Errorf("expected new listing last, got %+v", all[2])
	}
}
