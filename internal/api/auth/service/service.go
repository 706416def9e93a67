package authService

import (
	"EmotionAPI/internal/api/auth"
	"EmotionAPI/pkg/bcrypt"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type AuthService interface {
	ExchangeAPIKey(ctx context.Context, apiKey string) (auth.TokenResponse, error)
}

type authService struct {
	log         *logrus.Logger
	bcryptUtils bcrypt.IBcrypt
}

func New(log *logrus.Logger, bcryptUtils bcrypt.IBcrypt) AuthService {
	return &authService{
		log:         log,
		bcryptUtils: bcryptUtils,
	}
}
