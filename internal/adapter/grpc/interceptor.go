package grpc

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDKey is the metadata key carrying the request id
const RequestIDKey = "x-request-id"

type ctxKey struct{}

// RequestID returns the id assigned by RequestLoggingInterceptor
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata, bare or as "Bearer <token>".
// If the token is missing or invalid, it returns status.Unauthenticated.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		token := strings.TrimPrefix(authHeaders[0], "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// RequestLoggingInterceptor assigns a request id (reusing x-request-id
// metadata when present), returns it in the response header and logs the
// outcome of every call.
func RequestLoggingInterceptor(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 {
				id = ids[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id))

		resp, err := handler(context.WithValue(ctx, ctxKey{}, id), req)

		code := status.Code(err)
		entry := log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     info.FullMethod,
			"code":       code.String(),
			"duration":   time.Since(start).String(),
		})
		if code == codes.Internal || code == codes.Unknown {
			entry.WithError(err).Error("grpc request failed")
		} else {
			entry.Info("grpc request")
		}

		return resp, err
	}
}
