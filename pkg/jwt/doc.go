// Package jwt verifies the HS256 bearer tokens issued by the user service and
// exposes the authenticated user id to handlers.
//
// Tokens carry the user id in a "user_id" claim; tokens that only set the
// registered "sub" claim are accepted too. Signing and verification use
// github.com/golang-jwt/jwt/v5 with the method pinned to HS256.
//
// # Usage
//
//	svc, err := jwt.New(jwt.Config{Secret: os.Getenv("JWT_SECRET")})
//	if err != nil {
//		// handle error
//	}
//
//	r.Use(jwt.Middleware(svc))
//	r.Get("/payment/my-plan", func(w http.ResponseWriter, r *http.Request) {
//		userID, _ := jwt.UserID(r.Context())
//		// ...
//	})
//
// # Error Handling
//
// Parse returns ErrInvalidToken, ErrExpiredToken or ErrMissingUserID; all
// can be compared with errors.Is.
package jwt
