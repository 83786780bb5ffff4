// internal/api/nav/handlers.go
package nav

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/apiutil"
	"github.com/codr1/Sideline/internal/api/authz"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const searchLimit = 10

var queries *dbgen.Queries

func InitHandlers(q *dbgen.Queries) {
	queries = q
}

type Item struct {
	Label string       `json:"label"`
	Path  string       `json:"path"`
	Roles []authz.Role `json:"-"`
}

var everyone = []authz.Role{authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleCoach, authz.RolePlayer}

var menu = []Item{
	{Label: "Dashboard", Path: "/", Roles: everyone},
	{Label: "Teams", Path: "/teams", Roles: everyone},
	{Label: "Players", Path: "/players", Roles: []authz.Role{authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleCoach}},
	{Label: "Matches", Path: "/matches", Roles: everyone},
	{Label: "Trainings", Path: "/trainings", Roles: everyone},
	{Label: "Evaluations", Path: "/evaluations", Roles: everyone},
	{Label: "Users", Path: "/admin/users", Roles: []authz.Role{authz.RoleSuperAdmin, authz.RoleAdmin}},
	{Label: "Invites", Path: "/admin/invites", Roles: []authz.Role{authz.RoleSuperAdmin}},
}

// MenuFor returns the menu items visible to role, in display order.
func MenuFor(role authz.Role) []Item {
	items := make([]Item, 0, len(menu))
	for _, item := range menu {
		if slices.Contains(item.Roles, role) {
			items = append(items, item)
		}
	}
	return items
}

func HandleMenu(w http.ResponseWriter, r *http.Request) {
	user, err := authz.RequireRole(r.Context(), authz.Roles...)
	if err != nil {
		apiutil.WriteAuthzError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"items": MenuFor(user.Role)}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write menu")
	}
}

type SearchResult struct {
	PlayerID     int64  `json:"player_id"`
	TeamID       int64  `json:"team_id"`
	Name         string `json:"name"`
	JerseyNumber *int64 `json:"jersey_number,omitempty"`
	rank         int
}

func HandleSearch(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	user, err := authz.RequireRole(r.Context(), authz.Roles...)
	if err != nil {
		apiutil.WriteAuthzError(w, r, err)
		return
	}

	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		if err := apiutil.WriteJSON(w, http.StatusOK, []SearchResult{}); err != nil {
			logger.Error().Err(err).Msg("Failed to write search results")
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teamIDs, err := visibleTeams(ctx, user)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve visible teams")
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	var players []dbgen.Player
	for _, teamID := range teamIDs {
		roster, err := queries.ListPlayersByTeam(ctx, teamID)
		if err != nil {
			logger.Error().Err(err).Int64("team_id", teamID).Msg("Failed to list players for search")
			http.Error(w, "Search failed", http.StatusInternalServerError)
			return
		}
		players = append(players, roster...)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, Search(term, players)); err != nil {
		logger.Error().Err(err).Msg("Failed to write search results")
	}
}

// Search ranks players whose full name fuzzily contains term.
func Search(term string, players []dbgen.Player) []SearchResult {
	results := make([]SearchResult, 0, searchLimit)
	for _, p := range players {
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		rank := fuzzy.RankMatchNormalizedFold(term, name)
		if rank < 0 {
			continue
		}
		result := SearchResult{PlayerID: p.ID, TeamID: p.TeamID, Name: name, rank: rank}
		if p.JerseyNumber.Valid {
			jersey := p.JerseyNumber.Int64
			result.JerseyNumber = &jersey
		}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].rank != results[j].rank {
			return results[i].rank < results[j].rank
		}
		return results[i].Name < results[j].Name
	})
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}
	return results
}

func visibleTeams(ctx context.Context, user *authz.AuthUser) ([]int64, error) {
	if !user.Role.IsAdmin() {
		return user.TeamIDs, nil
	}
	teams, err := queries.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	return ids, nil
}
