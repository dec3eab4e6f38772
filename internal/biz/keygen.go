package biz

import (
	"context"
	"fmt"

	"go-linkstats/internal/conf"
	"go-linkstats/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// reservedKeys collide with fixed routes and can never be redirected.
var reservedKeys = map[string]struct{}{
	"links":   {},
	"healthz": {},
	"metrics": {},
}

func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// KeyGenerator draws random keys and checks them against the store.
type KeyGenerator struct {
	repo        LinkRepo
	alphabet    string
	length      int
	maxAttempts int
	newKey      func(alphabet string, size int) (string, error)
	log         *log.Helper
}

func NewKeyGenerator(c *conf.KeyGen, repo LinkRepo, logger log.Logger) *KeyGenerator {
	g := &KeyGenerator{
		repo:        repo,
		alphabet:    conf.DefaultAlphabet,
		length:      conf.DefaultKeyLength,
		maxAttempts: conf.DefaultMaxAttempts,
		newKey:      gonanoid.Generate,
		log:         log.NewHelper(logger),
	}
	if c != nil {
		if c.Alphabet != "" {
			g.alphabet = c.Alphabet
		}
		if c.Length > 0 {
			g.length = c.Length
		}
		if c.MaxAttempts > 0 {
			g.maxAttempts = c.MaxAttempts
		}
	}
	return g
}

// MaxAttempts bounds both the candidate loop in Generate and the number of
// create-time retries callers make.
func (g *KeyGenerator) MaxAttempts() int {
	return g.maxAttempts
}

// Generate returns a key no stored link uses, or ErrKeyExhausted after
// MaxAttempts taken candidates. The check is advisory: the store's unique
// constraint is what finally decides.
func (g *KeyGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		key, err := g.newKey(g.alphabet, g.length)
		if err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		if IsReservedKey(key) {
			metrics.KeyCollisions.Inc()
			continue
		}

		exists, err := g.repo.ExistsKey(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check key %s: %w", key, err)
		}
		if !exists {
			return key, nil
		}

		metrics.KeyCollisions.Inc()
		g.log.WithContext(ctx).Warnf("key collision on attempt %d/%d", attempt, g.maxAttempts)
	}

	metrics.KeyExhaustions.Inc()
	return "", ErrKeyExhausted
}
