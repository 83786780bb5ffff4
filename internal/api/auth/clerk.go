package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/rs/zerolog/log"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const clerkCookieName = "__session"

// clerkInitialized indicates whether the Clerk SDK has been initialized
var clerkInitialized bool

// clerkUserLookup resolves a verified Clerk session token to the Clerk user.
var clerkUserLookup = func(ctx context.Context, token string) (*clerk.User, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
	if err != nil {
		return nil, err
	}
	return user.Get(ctx, claims.Subject)
}

// InitClerk initializes Clerk SDK with the secret key
func InitClerk(secretKey string) {
	if secretKey == "" {
		log.Info().Msg("Clerk secret key not configured, Clerk sessions disabled")
		clerkInitialized = false
		return
	}
	clerk.SetKey(secretKey)
	clerkInitialized = true
	log.Info().Msg("Clerk SDK initialized")
}

func verifyClerkToken(ctx context.Context, token string) (dbgen.Profile, error) {
	clerkUser, err := clerkUserLookup(ctx, token)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Invalid Clerk session token")
		return dbgen.Profile{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	profile, err := findProfileFromClerk(ctx, clerkUser)
	if errors.Is(err, sql.ErrNoRows) {
		log.Ctx(ctx).Warn().Str("clerk_user_id", clerkUser.ID).Msg("Clerk user has no matching profile")
		return dbgen.Profile{}, fmt.Errorf("%w: no profile for clerk user", ErrInvalidSession)
	}
	return profile, err
}

// findProfileFromClerk matches the primary email first, then any other address.
func findProfileFromClerk(ctx context.Context, clerkUser *clerk.User) (dbgen.Profile, error) {
	if queries == nil {
		return dbgen.Profile{}, errAuthConfigMissing
	}
	if clerkUser == nil {
		return dbgen.Profile{}, sql.ErrNoRows
	}

	var addresses []string
	if clerkUser.PrimaryEmailAddressID != nil {
		for _, address := range clerkUser.EmailAddresses {
			if address != nil && address.ID == *clerkUser.PrimaryEmailAddressID {
				addresses = append(addresses, address.EmailAddress)
			}
		}
	}
	for _, address := range clerkUser.EmailAddresses {
		if address != nil {
			addresses = append(addresses, address.EmailAddress)
		}
	}

	for _, address := range addresses {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		profile, err := queries.GetProfileByEmail(ctx, address)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return dbgen.Profile{}, err
		}
	}
	return dbgen.Profile{}, sql.ErrNoRows
}
