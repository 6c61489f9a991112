package service

import (
	"context"

	"google.golang.org/api/idtoken"
)

// GoogleUser: проверенные данные пользователя из Google ID token
type GoogleUser struct {
	Email     string
	FirstName string
	LastName  string
	Sub       string // стабильный идентификатор субъекта в Google
}

// GoogleVerifier проверяет ID token внешнего провайдера
type GoogleVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleUser, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, credential string) (*GoogleUser, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	firstName, _ := payload.Claims["given_name"].(string)
	lastName, _ := payload.Claims["family_name"].(string)
	sub, _ := payload.Claims["sub"].(string)

	return &GoogleUser{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Sub:       sub,
	}, nil
}
