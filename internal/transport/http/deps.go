package http

import (
	"github.com/foodshare/foodshare-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/foodshare/foodshare-api/internal/infrastructure/jwt"
	"github.com/foodshare/foodshare-api/internal/infrastructure/mail"
	s3infra "github.com/foodshare/foodshare-api/internal/infrastructure/s3"
	"github.com/foodshare/foodshare-api/internal/infrastructure/ws"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	FoodRepo         *dynamo.FoodRepo
	NotificationRepo *dynamo.NotificationRepo
	S3Store          *s3infra.Store
	Mailer           mail.Mailer
	Hub              *ws.Hub
	JWTProvider      *jwtinfra.Provider
}
