package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/sonder-backend/internal/platform/envutil"
	"github.com/yungbote/sonder-backend/internal/services"
)

type Config struct {
	Port        string
	LogMode     string
	Environment string
	Version     string
	JWTSecret   string

	Match              services.MatchParams
	SupportedLanguages []string
	FeedCacheTTL       time.Duration
}

func LoadConfig() (Config, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET")
	}

	match := services.DefaultMatchParams()
	match.SimilarityThreshold = envutil.Float("MATCH_SIMILARITY_THRESHOLD", match.SimilarityThreshold)
	match.ArchetypeBoost = envutil.Float("MATCH_ARCHETYPE_BOOST", match.ArchetypeBoost)
	match.EmotionBoost = envutil.Float("MATCH_EMOTION_BOOST", match.EmotionBoost)

	langs := strings.Split(envutil.Str("SUPPORTED_LANGUAGES", "en,es,fr,de,pt,it,ja,ko,zh,ar,hi,ru"), ",")
	for i := range langs {
		langs[i] = strings.ToLower(strings.TrimSpace(langs[i]))
	}

	return Config{
		Port:               envutil.Str("PORT", "8080"),
		LogMode:            envutil.Str("LOG_MODE", "dev"),
		Environment:        envutil.Str("ENVIRONMENT", "development"),
		Version:            envutil.Str("SERVICE_VERSION", "dev"),
		JWTSecret:          secret,
		Match:              match,
		SupportedLanguages: langs,
		FeedCacheTTL:       envutil.Duration("FEED_CACHE_TTL", 30*time.Second),
	}, nil
}
