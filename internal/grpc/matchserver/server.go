package matchserver

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
)

// Server implements MatchService on top of a MatchManager
type Server struct {
	matches *MatchManager
	logger  zerolog.Logger
}

// NewServer creates a new match server
func NewServer(matches *MatchManager, logger zerolog.Logger) *Server {
	return &Server{
		matches: matches,
		logger:  logger.With().Str("component", "MatchServer").Logger(),
	}
}

// CreateMatch starts a match. Request fields: width, height, seed, all optional.
func (s *Server) CreateMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	width := f.number("width", 0)
	height := f.number("height", 0)
	seed := f.number("seed", 0)
	if f.err != nil {
		return nil, f.err
	}

	id, err := s.matches.CreateMatch(ctx, MatchOptions{Width: int(width), Height: int(height), Seed: seed})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"match_id": id})
}

// GetSnapshot returns the full state of a match
func (s *Server) GetSnapshot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	id := f.requiredString("match_id")
	if f.err != nil {
		return nil, f.err
	}

	snap, err := s.matches.Snapshot(id)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding snapshot: %v", err)
	}
	return out, nil
}

// SubmitCommand applies one command. Rule rejections come back with
// ok=false; only malformed requests and unknown matches are RPC errors.
func (s *Server) SubmitCommand(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	id := f.requiredString("match_id")
	player := f.number("player", -1)
	key := f.optionalString("idempotency_key")
	raw := f.structField("command")
	if f.err != nil {
		return nil, f.err
	}

	cmd, err := commandFromStruct(raw)
	if err != nil {
		return nil, toStatus(err)
	}

	resp, cached, err := s.matches.Submit(id, int(player), key, cmd)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Debug().
		Str("match_id", id).
		Int64("player_id", player).
		Str("command_type", string(cmd.Type)).
		Bool("cached", cached).
		Bool("ok", resp.GetFields()["ok"].GetBoolValue()).
		Msg("Command submitted")
	return resp, nil
}

// EndMatch removes a match
func (s *Server) EndMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	id := f.requiredString("match_id")
	if f.err != nil {
		return nil, f.err
	}
	if err := s.matches.EndMatch(id); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

// GetHistory returns the journaled commands of a match. Request fields:
// match_id, and since (a sequence number cursor, default 0).
func (s *Server) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	id := f.requiredString("match_id")
	since := f.number("since", 0)
	if f.err != nil {
		return nil, f.err
	}

	entries, stats, err := s.matches.History(id, since)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(map[string]any{"entries": entries, "stats": stats})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding history: %v", err)
	}
	return out, nil
}

// toStatus maps manager errors onto gRPC codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrAtCapacity):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, processor.ErrMalformedCommand), errors.Is(err, game.ErrInvalidRules):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
