package bcrypt

import "golang.org/x/crypto/bcrypt"

type IBcrypt interface {
	HashSecret(secret string) (string, error)
	CompareSecret(hashedSecret string, secret string) error
}

type bcryptService struct {
	cost int
}

func New() IBcrypt {
	return &bcryptService{
		cost: bcrypt.DefaultCost,
	}
}

func NewWithCost(cost int) IBcrypt {
	return &bcryptService{
		cost: cost,
	}
}

func (b *bcryptService) HashSecret(secret string) (string, error) {
	result, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func (b *bcryptService) CompareSecret(hashedSecret string, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
}
