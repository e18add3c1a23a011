package service

import (
	"errors"
	"strconv"

	"github.com/aws/smithy-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"meetcal/cmd/internal/domain/entity"
	cognitoclient "meetcal/cmd/internal/integration/aws/cognito"
	"meetcal/cmd/internal/utils"
	"meetcal/cmd/internal/utils/apierror"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindBySub(sub string) (*entity.User, error)
	FindAll() ([]*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	Save(user *entity.User) error
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=80,nospaces"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64,hasspecial,hasdigit,hasupper,haslower"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type ConfirmSignupRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,min=1,max=6"`
}

type UserResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type UserLoginResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

type DefaultUserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Cognito  cognitoclient.CognitoInterface
}

func NewUserService(userRepo UserRepository, validate *validator.Validate, cogClient cognitoclient.CognitoInterface) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Validate: validate, Cognito: cogClient}
}

func (u *DefaultUserService) GetUsers() ([]*UserResponse, apierror.ErrorResponse) {
	users, err := u.UserRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

func (u *DefaultUserService) GetUser(rawId, subId string) (*UserResponse, apierror.ErrorResponse) {
	user, apierr := u.fetchUser(rawId, subId)
	if apierr != nil {
		return nil, apierr
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}
	return toUserResponse(user), nil
}

// CreateUser registers the user with the identity provider (which emails a
// confirmation code) and mirrors the account into our database.
func (u *DefaultUserService) CreateUser(req *CreateUserRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check if user already exists: %v", err)
		return apierror.InternalServerError
	}
	if found {
		return apierror.UserAlreadyExistsError
	}

	// The username is the calendar directory key, so it must be unique too.
	taken, err := u.UserRepo.ExistsByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to check if username is taken: %v", err)
		return apierror.InternalServerError
	}
	if taken {
		return apierror.UsernameTakenError
	}

	sub, err := u.Cognito.SignUp(&cognitoclient.User{Email: req.Email, Password: req.Password})
	if err != nil {
		return idpError("signup", req.Email, err)
	}

	now := utils.NowUTC()
	user := &entity.User{
		SubUUID:       sub,
		Username:      req.Username,
		Email:         req.Email,
		EmailVerified: false,
		IsAdmin:       false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.UserRepo.Save(user); err != nil {
		// Roll the IdP account back so the email is not burned.
		_ = u.Cognito.AdminDeleteUser(req.Email)
		log.Errorf("failed to create user: %v", err)
		return apierror.InternalServerError
	}
	return nil
}

func (u *DefaultUserService) Login(req *UserLoginRequest) (*UserLoginResponse, apierror.ErrorResponse) {
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.IDPUserNotFoundError
	}

	auth, err := u.Cognito.SignIn(&cognitoclient.UserLogin{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, idpError("signin", req.Email, err)
	}
	return &UserLoginResponse{AccessToken: auth.AccessToken, IDToken: auth.IDToken}, nil
}

func (u *DefaultUserService) ConfirmSignup(req *ConfirmSignupRequest) apierror.ErrorResponse {
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	user, err := u.UserRepo.FindByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to fetch user from database: %v", err)
		return apierror.InternalServerError
	}
	if user == nil {
		return apierror.IDPUserNotFoundError
	}
	if user.EmailVerified {
		return apierror.UserAlreadyConfirmedError
	}

	if err := u.Cognito.ConfirmAccount(&cognitoclient.UserConfirmation{Email: req.Email, Code: req.Code}); err != nil {
		return idpError("confirmation", req.Email, err)
	}

	user.EmailVerified = true
	user.UpdatedAt = utils.NowUTC()
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update user (%d) verified status: %v", user.ID, err)
	}
	return nil
}

func (u *DefaultUserService) fetchUser(rawId, sub string) (*entity.User, apierror.ErrorResponse) {
	if rawId == "@me" {
		user, err := u.UserRepo.FindBySub(sub)
		if err != nil {
			log.Errorf("failed to find user (%s) by sub: %v", sub, err)
			return nil, apierror.InternalServerError
		}
		return user, nil
	}

	userId, err := strconv.Atoi(rawId)
	if err != nil {
		return nil, apierror.NewInvalidParamTypeError("id", "int32")
	}

	user, err := u.UserRepo.FindByID(userId)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}
	return user, nil
}

// idpError maps a Cognito failure onto an API error. Unknown codes are
// logged and surfaced as 500s.
func idpError(op, email string, err error) apierror.ErrorResponse {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		log.Errorf("failed %s for user (%s): %v", op, email, err)
		return apierror.InternalServerError
	}

	switch apiErr.ErrorCode() {
	case "InvalidPasswordException":
		return apierror.IDPInvalidPasswordError
	case "UsernameExistsException":
		return apierror.IDPExistingEmailError
	case "UserNotFoundException":
		return apierror.IDPUserNotFoundError
	case "UserNotConfirmedException":
		return apierror.IDPUserNotConfirmedError
	case "NotAuthorizedException":
		return apierror.IDPCredentialsMismatchError
	case "CodeMismatchException":
		return apierror.IDPConfirmCodeMismatchError
	case "ExpiredCodeException":
		return apierror.IDPConfirmCodeExpiredError
	default:
		log.Errorf("%s failed for user (%s): %s - %s", op, email, apiErr.ErrorCode(), apiErr.ErrorMessage())
		return apierror.InternalServerError
	}
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
