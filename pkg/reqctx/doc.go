// Package reqctx holds request-scoped values that cross the HTTP boundary
// into services: request metadata and the verified principal.
//
// All context keys are private unexported types to prevent collisions.
// Access is provided through type-safe getter and setter functions.
//
// Setting values (in middleware):
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	ctx = reqctx.WithPrincipal(ctx, &reqctx.Principal{UserID: "42", Token: tok})
//
// Getting values (in services and outbound clients):
//
//	p, ok := reqctx.PrincipalFromContext(ctx)
//	token := reqctx.TokenFromContext(ctx)
//
// RequestMeta is set for every request. Principal is set only after the
// bearer token was verified; its LabID is set only on tenant-scoped routes.
package reqctx
