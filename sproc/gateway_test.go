package sproc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laropanostra/shopapp"
	"github.com/laropanostra/shopapp/sproc"
)

// fakeRows replays canned result sets.
type fakeRows struct {
	sets    []fakeSet
	set     int
	row     int
	scanErr error
	closed  int
}

type fakeSet struct {
	cols []string
	rows [][]any
}

func (r *fakeRows) Columns() ([]string, error) { return r.sets[r.set].cols, nil }

func (r *fakeRows) Next() bool {
	if r.row >= len(r.sets[r.set].rows) {
		return false
	}
	r.row++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	for i, v := range r.sets[r.set].rows[r.row-1] {
		*(dest[i].(*any)) = v
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) NextResultSet() bool {
	if r.set+1 >= len(r.sets) {
		return false
	}
	r.set++
	r.row = 0
	return true
}

func (r *fakeRows) Close() error {
	r.closed++
	return nil
}

// fakeSource records every call made through it.
type fakeSource struct {
	rows     *fakeRows
	queryErr error
	connErr  error

	acquired int
	released int
	query    string
	args     []any
}

func (s *fakeSource) Conn(context.Context) (sproc.Conn, error) {
	if s.connErr != nil {
		return nil, s.connErr
	}
	s.acquired++
	return &fakeConn{src: s}, nil
}

type fakeConn struct {
	src *fakeSource
}

func (c *fakeConn) QueryContext(_ context.Context, query string, args ...any) (sproc.Rows, error) {
	c.src.query = query
	c.src.args = args
	if c.src.queryErr != nil {
		return nil, c.src.queryErr
	}
	if c.src.rows == nil {
		return &fakeRows{sets: []fakeSet{{}}}, nil
	}
	return c.src.rows, nil
}

func (c *fakeConn) Close() error {
	c.src.released++
	return nil
}

func TestGateway_StripsCacheParams(t *testing.T) {
	src := &fakeSource{}
	gw := sproc.New(src, sproc.SQLServer)

	_, err := gw.Execute(context.Background(), "venta.SEL_CARRITO_SP", shopapp.Params{
		"idUsuario":   "7",
		"nocache":     "true",
		"timestamp":   "1700000000000",
		"cacheBuster": "abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "venta.SEL_CARRITO_SP", src.query)
	assert.Equal(t, []any{sql.Named("idUsuario", "7")}, src.args)
}

func TestGateway_BindsNamesInOrder(t *testing.T) {
	src := &fakeSource{}
	gw := sproc.New(src, sproc.SQLServer)

	_, err := gw.Execute(context.Background(), "[venta].[INS_CARRITO_SP]", shopapp.Params{
		"idTalla":     int64(3),
		"@idProducto": int64(10),
		"cantidad":    int64(2),
	})
	require.NoError(t, err)

	assert.Equal(t, []any{
		sql.Named("idProducto", int64(10)),
		sql.Named("cantidad", int64(2)),
		sql.Named("idTalla", int64(3)),
	}, src.args)
}

func TestGateway_ReleasesConnectionOnce(t *testing.T) {
	queryErr := errors.New("deadlock victim")
	scanErr := errors.New("bad column")

	tests := []struct {
		name    string
		src     *fakeSource
		wantErr error
	}{
		{
			name: "success",
			src: &fakeSource{rows: &fakeRows{sets: []fakeSet{
				{cols: []string{"id"}, rows: [][]any{{int64(1)}}},
			}}},
		},
		{
			name:    "query fails",
			src:     &fakeSource{queryErr: queryErr},
			wantErr: queryErr,
		},
		{
			name: "scan fails",
			src: &fakeSource{rows: &fakeRows{
				sets:    []fakeSet{{cols: []string{"id"}, rows: [][]any{{int64(1)}}}},
				scanErr: scanErr,
			}},
			wantErr: scanErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := sproc.New(tt.src, sproc.SQLServer)

			_, err := gw.ExecuteMulti(context.Background(), "[venta].[SEL_VENTAS_SP]", nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, 1, tt.src.acquired)
			assert.Equal(t, 1, tt.src.released)
			if tt.src.rows != nil {
				assert.Equal(t, 1, tt.src.rows.closed)
			}
		})
	}
}

func TestGateway_ConnectionUnavailable(t *testing.T) {
	connErr := errors.New("login failed for user 'sa'")
	src := &fakeSource{connErr: connErr}
	gw := sproc.New(src, sproc.SQLServer)

	_, err := gw.Execute(context.Background(), "[catalogo].[SEL_TALLAS_SP]", nil)

	assert.ErrorIs(t, err, connErr)
	assert.Equal(t, 0, src.released)
}

func TestGateway_RejectsBeforeTouchingDatabase(t *testing.T) {
	tests := []struct {
		name      string
		procedure string
		params    shopapp.Params
	}{
		{name: "bad procedure name", procedure: "venta.SEL; DROP TABLE x", params: nil},
		{name: "bad parameter name", procedure: "venta.SEL_CARRITO_SP", params: shopapp.Params{"id Usuario": "1"}},
		{name: "nested value", procedure: "venta.SEL_CARRITO_SP", params: shopapp.Params{"x": map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			gw := sproc.New(src, sproc.SQLServer)

			_, err := gw.Execute(context.Background(), tt.procedure, tt.params)

			assert.ErrorIs(t, err, shopapp.ErrInvalidInput)
			assert.Equal(t, 0, src.acquired)
		})
	}
}

func TestGateway_ExecuteMultiPreservesOrder(t *testing.T) {
	src := &fakeSource{rows: &fakeRows{sets: []fakeSet{
		{cols: []string{"success"}, rows: [][]any{{int64(1)}}},
		{cols: []string{"idUsuario", "nombre"}, rows: [][]any{{int64(4), []byte("Ana")}}},
		{cols: []string{"rol"}, rows: nil},
	}}}
	gw := sproc.New(src, sproc.SQLServer)

	sets, err := gw.ExecuteMulti(context.Background(), "[seguridad].[SEL_LOGIN_SP]", nil)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	assert.Equal(t, shopapp.ResultSet{{"success": int64(1)}}, sets[0])
	assert.Equal(t, shopapp.ResultSet{{"idUsuario": int64(4), "nombre": "Ana"}}, sets[1])
	assert.NotNil(t, sets[2])
	assert.Empty(t, sets[2])
}

func TestGateway_ExecuteReturnsFirstSet(t *testing.T) {
	src := &fakeSource{rows: &fakeRows{sets: []fakeSet{
		{cols: []string{"a"}, rows: [][]any{{"x"}}},
		{cols: []string{"b"}, rows: [][]any{{"y"}}},
	}}}
	gw := sproc.New(src, sproc.SQLServer)

	set, err := gw.Execute(context.Background(), "[producto].[SEL_PRODUCTO_ALL_SP]", nil)
	require.NoError(t, err)
	assert.Equal(t, shopapp.ResultSet{{"a": "x"}}, set)
}

func TestGateway_NoResultSet(t *testing.T) {
	src := &fakeSource{rows: &fakeRows{sets: []fakeSet{{}}}}
	gw := sproc.New(src, sproc.SQLServer)

	set, err := gw.Execute(context.Background(), "[producto].[DEL_PRODUCTO_SP]", shopapp.Params{"idProducto": int64(1)})
	require.NoError(t, err)
	assert.Nil(t, set)
}

var errStop = errors.New("stop")

// deadlineSource reports whether the gateway set a deadline, then refuses.
type deadlineSource struct {
	deadline bool
}

func (s *deadlineSource) Conn(ctx context.Context) (sproc.Conn, error) {
	_, s.deadline = ctx.Deadline()
	return nil, errStop
}

func TestGateway_WithTimeout(t *testing.T) {
	src := &deadlineSource{}
	gw := sproc.New(src, sproc.SQLServer, sproc.WithTimeout(time.Second))

	_, err := gw.Execute(context.Background(), "[venta].[SEL_VENTAS_SP]", nil)

	assert.ErrorIs(t, err, errStop)
	assert.True(t, src.deadline)
}

func TestGateway_NoTimeoutByDefault(t *testing.T) {
	src := &deadlineSource{}
	gw := sproc.New(src, sproc.SQLServer)

	_, _ = gw.Execute(context.Background(), "[venta].[SEL_VENTAS_SP]", nil)

	assert.False(t, src.deadline)
}
