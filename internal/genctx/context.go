package genctx

import "context"

type ctxKey string

const (
	keyRID  ctxKey = "gen_rid"
	keyUID  ctxKey = "gen_uid"
	keyKind ctxKey = "gen_kind"
)

// WithRID stores correlation id for generation logs.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

// WithUID stores the authenticated user id for generation logs.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, keyUID, uid)
}

// UID returns the user id if present.
func UID(ctx context.Context) string {
	v, _ := ctx.Value(keyUID).(string)
	return v
}

// WithKind stores the generation type for generation logs.
func WithKind(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, keyKind, kind)
}

// Kind returns the generation type if present.
func Kind(ctx context.Context) string {
	v, _ := ctx.Value(keyKind).(string)
	return v
}
