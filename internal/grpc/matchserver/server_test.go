package matchserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/IsoTactics/internal/testutil"
)

const bufSize = 1024 * 1024

func setupTestServer(t *testing.T, maxMatches int) *MatchServiceClient {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	logger := testutil.NopLogger()

	mm := NewMatchManager(ManagerConfig{MaxMatches: maxMatches, DefaultWidth: 12, DefaultHeight: 12, Logger: logger})
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(LoggingInterceptor(logger), RecoveryInterceptor(logger)))
	RegisterMatchServiceServer(s, NewServer(mm, logger))

	go func() {
		_ = s.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		mm.Close()
	})
	return NewMatchServiceClient(conn)
}

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func createMatch(t *testing.T, client *MatchServiceClient) string {
	t.Helper()
	resp, err := client.CreateMatch(context.Background(), request(t, map[string]any{"seed": 9}))
	require.NoError(t, err)
	id := resp.GetFields()["match_id"].GetStringValue()
	require.NotEmpty(t, id)
	return id
}

func submit(t *testing.T, client *MatchServiceClient, id string, player int, key string, cmd map[string]any) (*structpb.Struct, error) {
	t.Helper()
	return client.SubmitCommand(context.Background(), request(t, map[string]any{
		"match_id":        id,
		"player":          player,
		"idempotency_key": key,
		"command":         cmd,
	}))
}

func TestServer_MatchLifecycle(t *testing.T) {
	client := setupTestServer(t, 0)
	ctx := context.Background()
	id := createMatch(t, client)

	snap, err := client.GetSnapshot(ctx, request(t, map[string]any{"match_id": id}))
	require.NoError(t, err)
	assert.Equal(t, id, snap.GetFields()["match_id"].GetStringValue())
	assert.Equal(t, float64(12), snap.GetFields()["width"].GetNumberValue())
	assert.Len(t, snap.GetFields()["units"].GetListValue().GetValues(), 4)

	resp, err := submit(t, client, id, 0, "", map[string]any{"type": "select", "unit_id": 1})
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["ok"].GetBoolValue())
	selected := resp.GetFields()["snapshot"].GetStructValue().GetFields()["selected_unit"]
	assert.Equal(t, float64(1), selected.GetNumberValue())

	resp, err = submit(t, client, id, 0, "", map[string]any{"type": "end_turn"})
	require.NoError(t, err)
	assert.True(t, resp.GetFields()["turn_ended"].GetBoolValue())

	_, err = client.EndMatch(ctx, request(t, map[string]any{"match_id": id}))
	require.NoError(t, err)

	_, err = client.GetSnapshot(ctx, request(t, map[string]any{"match_id": id}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_RuleRejectionIsInBand(t *testing.T) {
	client := setupTestServer(t, 0)
	id := createMatch(t, client)

	resp, err := submit(t, client, id, 1, "", map[string]any{"type": "end_turn"})
	require.NoError(t, err)
	assert.False(t, resp.GetFields()["ok"].GetBoolValue())
	assert.Equal(t, "turn", resp.GetFields()["error_kind"].GetStringValue())

	resp, err = submit(t, client, id, 0, "", map[string]any{"type": "select", "unit_id": 3})
	require.NoError(t, err)
	assert.False(t, resp.GetFields()["ok"].GetBoolValue(), "unit 3 belongs to player 1")
}

func TestServer_IdempotentSubmit(t *testing.T) {
	client := setupTestServer(t, 0)
	ctx := context.Background()
	id := createMatch(t, client)

	first, err := submit(t, client, id, 0, "turn-1", map[string]any{"type": "end_turn"})
	require.NoError(t, err)
	second, err := submit(t, client, id, 0, "turn-1", map[string]any{"type": "end_turn"})
	require.NoError(t, err)
	assert.True(t, first.GetFields()["ok"].GetBoolValue())
	assert.True(t, second.GetFields()["ok"].GetBoolValue())

	snap, err := client.GetSnapshot(ctx, request(t, map[string]any{"match_id": id}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), snap.GetFields()["turn_count"].GetNumberValue())
	assert.Equal(t, float64(1), snap.GetFields()["current_player"].GetNumberValue())
}

func TestServer_InvalidRequests(t *testing.T) {
	client := setupTestServer(t, 0)
	ctx := context.Background()
	id := createMatch(t, client)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"MissingMatchID", func() error {
			_, err := client.GetSnapshot(ctx, request(t, map[string]any{}))
			return err
		}, codes.InvalidArgument},
		{"UnknownMatch", func() error {
			_, err := submit(t, client, "missing", 0, "", map[string]any{"type": "end_turn"})
			return err
		}, codes.NotFound},
		{"FractionalWidth", func() error {
			_, err := client.CreateMatch(ctx, request(t, map[string]any{"width": 10.5}))
			return err
		}, codes.InvalidArgument},
		{"OversizedMap", func() error {
			_, err := client.CreateMatch(ctx, request(t, map[string]any{"width": 100000, "height": 100000}))
			return err
		}, codes.InvalidArgument},
		{"OverflowingMap", func() error {
			_, err := client.CreateMatch(ctx, request(t, map[string]any{"width": 1 << 32, "height": 1 << 32}))
			return err
		}, codes.InvalidArgument},
		{"MissingCommand", func() error {
			_, err := client.SubmitCommand(ctx, request(t, map[string]any{"match_id": id, "player": 0}))
			return err
		}, codes.InvalidArgument},
		{"UnknownCommandType", func() error {
			_, err := submit(t, client, id, 0, "", map[string]any{"type": "dance"})
			return err
		}, codes.InvalidArgument},
		{"EndUnknownMatch", func() error {
			_, err := client.EndMatch(ctx, request(t, map[string]any{"match_id": "missing"}))
			return err
		}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestServer_AtCapacity(t *testing.T) {
	client := setupTestServer(t, 1)
	createMatch(t, client)

	_, err := client.CreateMatch(context.Background(), request(t, map[string]any{}))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(testutil.NopLogger())
	info := &grpc.UnaryServerInfo{FullMethod: "/" + ServiceName + "/CreateMatch"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestServer_GetHistory(t *testing.T) {
	client := setupTestServer(t, 0)
	ctx := context.Background()
	id := createMatch(t, client)

	_, err := submit(t, client, id, 0, "", map[string]any{"type": "select", "unit_id": 3})
	require.NoError(t, err)
	_, err = submit(t, client, id, 0, "", map[string]any{"type": "end_turn"})
	require.NoError(t, err)

	resp, err := client.GetHistory(ctx, request(t, map[string]any{"match_id": id}))
	require.NoError(t, err)
	entries := resp.GetFields()["entries"].GetListValue().GetValues()
	require.Len(t, entries, 2)

	first := entries[0].GetStructValue().GetFields()
	assert.False(t, first["ok"].GetBoolValue())
	assert.Equal(t, "turn", first["error_kind"].GetStringValue())
	second := entries[1].GetStructValue().GetFields()
	assert.True(t, second["ok"].GetBoolValue())
	assert.Equal(t, "end_turn", second["command"].GetStructValue().GetFields()["type"].GetStringValue())

	resp, err = client.GetHistory(ctx, request(t, map[string]any{"match_id": id, "since": 1}))
	require.NoError(t, err)
	assert.Len(t, resp.GetFields()["entries"].GetListValue().GetValues(), 1)
}
