package cognito

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/codr1/Sideline/internal/retry"
)

// ErrCognitoThrottled marks errors returned when Cognito throttles requests.
// It also matches retry.ErrThrottled so calls are retried.
var ErrCognitoThrottled = errors.New("cognito throttling")

// ErrCognitoNotAuthorized marks errors returned when Cognito rejects credentials.
var ErrCognitoNotAuthorized = errors.New("cognito not authorized")

// ErrCognitoUserExists marks errors returned when trying to create an existing user.
var ErrCognitoUserExists = errors.New("cognito user already exists")

// ErrCognitoUserNotFound marks errors returned for unknown usernames.
var ErrCognitoUserNotFound = errors.New("cognito user not found")

// adminAPI is the part of the SDK client used here.
type adminAPI interface {
	AdminGetUser(ctx context.Context, params *cognitoidentityprovider.AdminGetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error)
	AdminCreateUser(ctx context.Context, params *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
	AdminDeleteUser(ctx context.Context, params *cognitoidentityprovider.AdminDeleteUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminDeleteUserOutput, error)
}

type CognitoClient struct {
	client adminAPI
	poolID string
	policy retry.Policy
}

// NewClient creates a new Cognito client for a user pool.
// The region is extracted from the pool ID (format: "region_poolid").
func NewClient(poolID string) (*CognitoClient, error) {
	region, err := regionFromPoolID(poolID)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &CognitoClient{
		client: cognitoidentityprovider.NewFromConfig(awsCfg),
		poolID: poolID,
		policy: retry.DefaultPolicy,
	}, nil
}

// UserExists reports whether a user with this email is in the pool.
func (c *CognitoClient) UserExists(ctx context.Context, email string) (bool, error) {
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		_, err := c.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
			UserPoolId: aws.String(c.poolID),
			Username:   aws.String(email),
		})
		return mapCognitoError(err)
	})
	if errors.Is(err, ErrCognitoUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateUser creates a new user in the Cognito User Pool.
// The user is created with email_verified=true and no welcome email is sent.
func (c *CognitoClient) CreateUser(ctx context.Context, email, displayName string) error {
	attrs := []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String(email)},
		{Name: aws.String("email_verified"), Value: aws.String("true")},
	}
	if name := strings.TrimSpace(displayName); name != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("name"), Value: aws.String(name)})
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context) error {
		_, err := c.client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
			UserPoolId:     aws.String(c.poolID),
			Username:       aws.String(email),
			MessageAction:  types.MessageActionTypeSuppress, // Don't send welcome email
			UserAttributes: attrs,
		})
		return mapCognitoError(err)
	})
}

// DeleteUser removes the user. Deleting an unknown user is not an error.
func (c *CognitoClient) DeleteUser(ctx context.Context, email string) error {
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		_, err := c.client.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
			UserPoolId: aws.String(c.poolID),
			Username:   aws.String(email),
		})
		return mapCognitoError(err)
	})
	if errors.Is(err, ErrCognitoUserNotFound) {
		return nil
	}
	return err
}

func mapCognitoError(err error) error {
	if err == nil {
		return nil
	}
	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return fmt.Errorf("%w: %w: %v", ErrCognitoThrottled, retry.ErrThrottled, err)
	}
	var notAuthorized *types.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return fmt.Errorf("%w: %v", ErrCognitoNotAuthorized, err)
	}
	var userExists *types.UsernameExistsException
	if errors.As(err, &userExists) {
		return fmt.Errorf("%w: %v", ErrCognitoUserExists, err)
	}
	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrCognitoUserNotFound, err)
	}
	return err
}

func regionFromPoolID(poolID string) (string, error) {
	parts := strings.SplitN(poolID, "_", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid cognito pool id: %q", poolID)
	}
	return parts[0], nil
}
