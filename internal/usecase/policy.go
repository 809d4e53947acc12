package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/nba-advisor/internal/domain/analysis"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"gopkg.in/yaml.v3"
)

// Kind names an entity kind. It is also the namespace of the kind's cache keys.
type Kind string

const (
	KindTeams              Kind = "teams"
	KindRoster             Kind = "roster"
	KindSeasonAverages     Kind = "season_averages"
	KindTeamSeasonAverages Kind = "team_season_averages"
	KindInjuries           Kind = "injuries"
	KindGames              Kind = "games"
	KindRecentGames        Kind = "recent_games"
	KindUpcomingGames      Kind = "upcoming_games"
	KindLineups            Kind = "lineups"
	KindOdds               Kind = "odds"
	KindPlayerProps        Kind = "player_props"
)

// Policy is how one entity kind is fetched. A mandatory kind aborts the analysis on
// failure; an optional one degrades to an unavailable section.
type Policy struct {
	TTL       time.Duration
	Cached    bool
	Mandatory bool
}

// EffectiveTTL is the TTL handed to the cache store; zero bypasses it.
func (p Policy) EffectiveTTL() time.Duration {
	if !p.Cached || p.TTL <= 0 {
		return 0
	}
	return p.TTL
}

type Policies map[Kind]Policy

func DefaultPolicies() Policies {
	return Policies{
		KindTeams:              {TTL: 2400 * time.Hour, Cached: true, Mandatory: true},
		KindRoster:             {TTL: 24 * time.Hour, Cached: true, Mandatory: true},
		KindSeasonAverages:     {TTL: 24 * time.Hour, Cached: true},
		KindTeamSeasonAverages: {TTL: 24 * time.Hour, Cached: true},
		KindLineups:            {TTL: 24 * time.Hour, Cached: true},
		KindInjuries:           {},
		KindGames:              {Mandatory: true},
		KindRecentGames:        {TTL: time.Hour, Cached: true},
		KindUpcomingGames:      {TTL: 10 * time.Second, Cached: true, Mandatory: true},
		KindOdds:               {TTL: 10 * time.Minute, Cached: true},
		KindPlayerProps:        {TTL: 10 * time.Minute, Cached: true},
	}
}

func Kinds() []Kind {
	return []Kind{
		KindTeams, KindRoster, KindSeasonAverages, KindTeamSeasonAverages, KindInjuries,
		KindGames, KindRecentGames, KindUpcomingGames, KindLineups, KindOdds, KindPlayerProps,
	}
}

// For returns the policy of kind, falling back to the defaults.
func (p Policies) For(kind Kind) Policy {
	if policy, ok := p[kind]; ok {
		return policy
	}
	return DefaultPolicies()[kind]
}

func (p Policies) TTL(kind Kind) time.Duration {
	return p.For(kind).EffectiveTTL()
}

// MaxTTL is the longest effective TTL over all kinds.
func (p Policies) MaxTTL() time.Duration {
	var longest time.Duration
	for _, kind := range Kinds() {
		if ttl := p.TTL(kind); ttl > longest {
			longest = ttl
		}
	}
	return longest
}

var (
	identityKinds  = []Kind{KindTeams, KindRoster, KindGames}
	longLivedKinds = []Kind{KindRoster, KindSeasonAverages, KindTeamSeasonAverages, KindLineups}
	volatileKinds  = []Kind{KindInjuries, KindGames, KindRecentGames, KindUpcomingGames, KindOdds, KindPlayerProps}
)

// Validate keeps the TTL ordering between kinds: teams outlive the long-lived kinds,
// which outlive every volatile kind. Identity kinds must stay mandatory.
func (p Policies) Validate() error {
	for kind, policy := range p {
		if policy.TTL < 0 {
			return fmt.Errorf("%w: %s ttl must be >= 0", ErrInvalidInput, kind)
		}
		if policy.Cached && policy.TTL == 0 {
			return fmt.Errorf("%w: %s is cached but has no ttl", ErrInvalidInput, kind)
		}
	}
	for _, kind := range identityKinds {
		if !p.For(kind).Mandatory {
			return fmt.Errorf("%w: %s must stay mandatory", ErrInvalidInput, kind)
		}
	}

	teams := p.For(KindTeams)
	for _, kind := range longLivedKinds {
		policy := p.For(kind)
		if teams.Cached && policy.Cached && policy.TTL > teams.TTL {
			return fmt.Errorf("%w: %s ttl %s exceeds teams ttl %s", ErrInvalidInput, kind, policy.TTL, teams.TTL)
		}
		for _, volatile := range volatileKinds {
			short := p.For(volatile)
			if policy.Cached && short.Cached && short.TTL > policy.TTL {
				return fmt.Errorf("%w: %s ttl %s exceeds %s ttl %s", ErrInvalidInput, volatile, short.TTL, kind, policy.TTL)
			}
		}
	}
	return nil
}

type policyFile struct {
	Policies map[string]policyEntry `yaml:"policies" validate:"dive,keys,oneof=teams roster season_averages team_season_averages injuries games recent_games upcoming_games lineups odds player_props,endkeys"`
}

type policyEntry struct {
	TTL       string `yaml:"ttl"`
	Cached    *bool  `yaml:"cached"`
	Mandatory *bool  `yaml:"mandatory"`
}

// LoadPolicies applies a YAML override document on top of the defaults:
//
//	policies:
//	  odds:
//	    ttl: 5m
//	  injuries:
//	    cached: true
//	    ttl: 30m
func LoadPolicies(raw []byte) (Policies, error) {
	policies := DefaultPolicies()
	if strings.TrimSpace(string(raw)) == "" {
		return policies, nil
	}

	var doc policyFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode policy file: %v", ErrInvalidInput, err)
	}
	if err := queryValidator.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: unknown kind in policy file: %v", ErrInvalidInput, err)
	}

	names := make([]string, 0, len(doc.Policies))
	for name := range doc.Policies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := doc.Policies[name]
		kind := Kind(name)
		policy := policies[kind]
		if ttl := strings.TrimSpace(entry.TTL); ttl != "" {
			parsed, err := time.ParseDuration(ttl)
			if err != nil {
				return nil, fmt.Errorf("%w: %s ttl: %v", ErrInvalidInput, kind, err)
			}
			policy.TTL = parsed
		}
		if entry.Cached != nil {
			policy.Cached = *entry.Cached
		}
		if entry.Mandatory != nil {
			policy.Mandatory = *entry.Mandatory
		}
		policies[kind] = policy
	}

	if err := policies.Validate(); err != nil {
		return nil, err
	}
	return policies, nil
}

type fetchResolver struct {
	policies Policies
	logger   *logging.Logger
}

// resolve runs one fetch under the kind's policy. Optional kinds turn a failure into an
// unavailable section and a warning; mandatory kinds return a *FetchError.
func resolve[T any](ctx context.Context, r fetchResolver, kind Kind, key string, fetch func(context.Context) (T, error)) (analysis.Section[T], error) {
	value, err := fetch(ctx)
	if err == nil {
		return analysis.Some(value), nil
	}
	if r.policies.For(kind).Mandatory {
		return analysis.None[T](), &FetchError{Kind: kind, Key: key, Err: err}
	}
	r.logger.WarnContext(ctx, "optional fetch failed, section unavailable",
		"kind", string(kind),
		"key", key,
		"error", err,
	)
	return analysis.None[T](), nil
}
