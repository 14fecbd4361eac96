package e2e_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const catalogFunctions = `
CREATE SCHEMA catalogo;
CREATE FUNCTION catalogo."SEL_TALLAS_SP"()
RETURNS TABLE("idTalla" bigint, talla text)
LANGUAGE sql AS $$
	SELECT * FROM (VALUES (1::bigint, 'CH'), (2::bigint, 'M'), (3::bigint, 'G')) AS t(id, talla) ORDER BY id
$$;

CREATE SCHEMA venta;
CREATE FUNCTION venta."SEL_VENTAS_SP"("idUsuario" text)
RETURNS TABLE("idVenta" bigint, total double precision)
LANGUAGE sql AS $$
	SELECT v.id, v.total
	FROM (VALUES (1::bigint, '3', 10.5::double precision),
	             (2::bigint, '4', 1.0::double precision)) AS v(id, usuario, total)
	WHERE v.usuario = "idUsuario"
$$;`

// startPostgres runs a container with the catalog functions installed and
// returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := pgcontainer.Run(ctx,
		"postgres:18-alpine",
		pgcontainer.WithDatabase("shopapp"),
		pgcontainer.WithUsername("shop"),
		pgcontainer.WithPassword("shop"),
		pgcontainer.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, catalogFunctions)
	require.NoError(t, err)

	return dsn
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestE2E_ShopAPI_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	dsn := startPostgres(t)
	baseURL := startServer(t, buildBinary(t, "shopapi"), getOpenPort(t), "/api/health",
		"--db-driver", "postgres",
		"--db-dsn", dsn,
	)

	t.Run("health", func(t *testing.T) {
		var body map[string]string
		assert.Equal(t, http.StatusOK, getJSON(t, baseURL+"/api/health", &body))
		assert.Equal(t, map[string]string{"status": "ok", "database": "ok"}, body)
	})

	t.Run("single result set", func(t *testing.T) {
		var tallas []map[string]any
		require.Equal(t, http.StatusOK, getJSON(t, baseURL+"/api/catalogo/getTallas?nocache=123", &tallas))
		require.Len(t, tallas, 3)
		assert.Equal(t, "CH", tallas[0]["talla"])
	})

	t.Run("multi result set with query binding", func(t *testing.T) {
		var sets [][]map[string]any
		require.Equal(t, http.StatusOK, getJSON(t, baseURL+"/api/venta/getVentas?idUsuario=3", &sets))
		require.Len(t, sets, 1)
		require.Len(t, sets[0], 1)
		assert.InDelta(t, 10.5, sets[0][0]["total"], 0.001)
	})

	t.Run("missing procedure is a fault", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, getJSON(t, baseURL+"/api/catalogo/getGeneros", nil))
	})
}
