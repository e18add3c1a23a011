package cognitoclient

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type User struct {
	Email    string
	Password string
}

type UserLogin struct {
	Email    string
	Password string
}

type UserConfirmation struct {
	Email string
	Code  string
}

type AuthCreate struct {
	AccessToken string
	IDToken     string
}

// CognitoInterface is what the user service needs from the identity
// provider. Errors bubble up as smithy.APIError so the service can switch on
// the Cognito error code.
type CognitoInterface interface {
	SignUp(user *User) (string, error)
	SignIn(login *UserLogin) (*AuthCreate, error)
	ConfirmAccount(conf *UserConfirmation) error
	AdminDeleteUser(email string) error
}

type Client struct {
	api        *cognitoidentityprovider.Client
	clientID   string
	userPoolID string
}

func InitCognitoClient() (*Client, error) {
	clientID := os.Getenv("COGNITO_CLIENT_ID")
	userPoolID := os.Getenv("COGNITO_USER_POOL_ID")
	if clientID == "" || userPoolID == "" {
		return nil, errors.New("COGNITO_CLIENT_ID and COGNITO_USER_POOL_ID must be set")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}

	return &Client{
		api:        cognitoidentityprovider.NewFromConfig(cfg),
		clientID:   clientID,
		userPoolID: userPoolID,
	}, nil
}

// SignUp registers the user on Cognito and returns their subject UUID.
// Cognito sends the confirmation code email itself.
func (c *Client) SignUp(user *User) (string, error) {
	out, err := c.api.SignUp(context.Background(), &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(user.Email),
		Password: aws.String(user.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(user.Email)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.UserSub), nil
}

func (c *Client) SignIn(login *UserLogin) (*AuthCreate, error) {
	out, err := c.api.InitiateAuth(context.Background(), &cognitoidentityprovider.InitiateAuthInput{
		ClientId: aws.String(c.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": login.Email,
			"PASSWORD": login.Password,
		},
	})
	if err != nil {
		return nil, err
	}

	result := out.AuthenticationResult
	if result == nil {
		return nil, errors.New("cognito returned no authentication result")
	}
	return &AuthCreate{
		AccessToken: aws.ToString(result.AccessToken),
		IDToken:     aws.ToString(result.IdToken),
	}, nil
}

func (c *Client) ConfirmAccount(conf *UserConfirmation) error {
	_, err := c.api.ConfirmSignUp(context.Background(), &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(conf.Email),
		ConfirmationCode: aws.String(conf.Code),
	})
	return err
}

func (c *Client) AdminDeleteUser(email string) error {
	_, err := c.api.AdminDeleteUser(context.Background(), &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(email),
	})
	return err
}
