package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Neo4j          Neo4jConfig          `mapstructure:"neo4j"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Places         PlacesConfig         `mapstructure:"places"`
	Ranking        RankingConfig        `mapstructure:"ranking"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Neo4jConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		ReviewEvents string `mapstructure:"review_events"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string          `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Default int           `mapstructure:"default"`
	Window  time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PlacesConfig configures the external local-search provider.
type PlacesConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RadiusMeters int           `mapstructure:"radius_meters"`
	PageSize     int           `mapstructure:"page_size"`
}

// RankingConfig configures the optional remote text-ranking signal. The
// signal is best-effort enrichment; the pipeline never depends on it.
type RankingConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	TopN    int           `mapstructure:"top_n"`
}

type RecommendationConfig struct {
	PlacesPerCategory    int           `mapstructure:"places_per_category"`
	InitialSearchCount   int           `mapstructure:"initial_search_count"`
	BackfillMultiplier   int           `mapstructure:"backfill_multiplier"`
	EscalationMultiplier int           `mapstructure:"escalation_multiplier"`
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	DetailTTL            time.Duration `mapstructure:"detail_ttl"`
	Scoring              ScoringConfig `mapstructure:"scoring"`
	Rules                RuleConfig    `mapstructure:"rules"`
}

// ScoringConfig carries the heuristic constants of the condition scorer.
// All of them are tunable; the defaults below are the shipped behavior.
type ScoringConfig struct {
	FullMatchBonus        float64            `mapstructure:"full_match_bonus"`
	RelaxedFloor          float64            `mapstructure:"relaxed_floor"`
	PartialMatchThreshold float64            `mapstructure:"partial_match_threshold"`
	CategoryBaseBonus     map[string]float64 `mapstructure:"category_base_bonus"`
	DistanceTiers         []DistanceTier     `mapstructure:"distance_tiers"`
}

type DistanceTier struct {
	MaxKm float64 `mapstructure:"max_km"`
	Bonus float64 `mapstructure:"bonus"`
}

// RuleConfig holds the keyword rule tables driving classification and
// condition scoring. Rules are ordered; first match wins during
// classification.
type RuleConfig struct {
	RejectTerms        []string            `mapstructure:"reject_terms"`
	CafeTerms          []string            `mapstructure:"cafe_terms"`
	CafeExcludeTerms   []string            `mapstructure:"cafe_exclude_terms"`
	DiningTerms        []string            `mapstructure:"dining_terms"`
	DiningExcludeTerms []string            `mapstructure:"dining_exclude_terms"`
	ActivityTerms      []string            `mapstructure:"activity_terms"`
	ProfileExclusions  map[string][]string `mapstructure:"profile_exclusions"`
	ConditionFamilies  []ConditionFamily   `mapstructure:"condition_families"`
}

// ConditionFamily is one themed group of scoring cues. A family activates
// when any of its triggers appears in the free-text condition; each cue the
// candidate matches then contributes its weight. BoostTriggers raise cue
// weights by BoostDelta when present in the condition text.
type ConditionFamily struct {
	Name          string    `mapstructure:"name"`
	Triggers      []string  `mapstructure:"triggers"`
	Cues          []CueRule `mapstructure:"cues"`
	BoostTriggers []string  `mapstructure:"boost_triggers"`
	BoostDelta    float64   `mapstructure:"boost_delta"`
	ReasonPhrase  string    `mapstructure:"reason_phrase"`
}

type CueRule struct {
	Keywords []string `mapstructure:"keywords"`
	Weight   float64  `mapstructure:"weight"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.hot.max_retries", 3)
	viper.SetDefault("redis.hot.pool_size", 10)
	viper.SetDefault("redis.hot.timeout", "5s")
	viper.SetDefault("redis.warm.max_retries", 3)
	viper.SetDefault("redis.warm.pool_size", 5)
	viper.SetDefault("redis.warm.timeout", "10s")

	// Neo4j defaults
	viper.SetDefault("neo4j.enabled", false)

	// Kafka defaults
	viper.SetDefault("kafka.topics.review_events", "review-events")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.rate_limit.default", 1000)
	viper.SetDefault("auth.rate_limit.window", "1h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Places provider defaults
	viper.SetDefault("places.base_url", "https://dapi.kakao.com")
	viper.SetDefault("places.timeout", "5s")
	viper.SetDefault("places.radius_meters", 2000)
	viper.SetDefault("places.page_size", 15)

	// Ranking signal defaults
	viper.SetDefault("ranking.enabled", false)
	viper.SetDefault("ranking.timeout", "3s")
	viper.SetDefault("ranking.top_n", 10)

	// Recommendation defaults
	viper.SetDefault("recommendation.places_per_category", 3)
	viper.SetDefault("recommendation.initial_search_count", 45)
	viper.SetDefault("recommendation.backfill_multiplier", 15)
	viper.SetDefault("recommendation.escalation_multiplier", 25)
	viper.SetDefault("recommendation.cache_ttl", "15m")
	viper.SetDefault("recommendation.detail_ttl", "30m")

	// Scoring defaults
	viper.SetDefault("recommendation.scoring.full_match_bonus", 80.0)
	viper.SetDefault("recommendation.scoring.relaxed_floor", 50.0)
	viper.SetDefault("recommendation.scoring.partial_match_threshold", 0.3)
	viper.SetDefault("recommendation.scoring.category_base_bonus", map[string]interface{}{
		"ACTIVITY": 3.0,
		"DINING":   2.0,
		"CAFE":     2.0,
	})
	viper.SetDefault("recommendation.scoring.distance_tiers", []map[string]interface{}{
		{"max_km": 0.5, "bonus": 40.0},
		{"max_km": 1.0, "bonus": 30.0},
		{"max_km": 1.5, "bonus": 20.0},
		{"max_km": 2.0, "bonus": 10.0},
	})

	setRuleDefaults()

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}

// setRuleDefaults seeds the keyword rule tables. Keyword lists are heuristic
// by nature; they live in configuration so behavior can be tuned without a
// code change.
func setRuleDefaults() {
	// Transit facilities and public administration are unsuitable for
	// leisure visits and are rejected before classification.
	viper.SetDefault("recommendation.rules.reject_terms", []string{
		"역", "정류장", "터미널", "지하철", "버스",
		"시청", "구청", "주민센터", "우체국", "은행", "병원",
		"공공", "행정", "기관",
	})

	viper.SetDefault("recommendation.rules.cafe_terms", []string{
		"카페", "커피", "스타벅스", "투썸", "이디야", "빽다방", "메가커피",
		"폴바셋", "커피빈", "브런치", "디저트", "베이커리", "북카페",
		"cafe", "coffee",
	})
	viper.SetDefault("recommendation.rules.cafe_exclude_terms", []string{
		"먹자골목", "맛집거리", "음식거리", "먹거리촌",
	})

	viper.SetDefault("recommendation.rules.dining_terms", []string{
		"식당", "맛집", "레스토랑", "한식", "중식", "일식", "양식", "분식",
		"고기", "갈비", "치킨", "피자", "파스타", "횟집", "국밥", "냉면",
		"먹자골목", "맛집거리", "음식거리",
	})
	viper.SetDefault("recommendation.rules.dining_exclude_terms", []string{
		"카페", "커피", "스타벅스", "투썸", "이디야",
	})

	viper.SetDefault("recommendation.rules.activity_terms", []string{
		"공원", "박물관", "미술관", "갤러리", "전시", "영화관", "공연",
		"체험", "관광", "명소", "산책", "놀이공원", "수족관", "스포츠",
		"경기장", "쇼핑몰", "시장", "전망대", "테마파크",
	})

	// Hard profile gates: a candidate whose text contains any of these terms
	// is never a full match for the profile.
	viper.SetDefault("recommendation.rules.profile_exclusions", map[string][]string{
		"ALONE":  {"노래방", "오락실", "볼링", "당구", "술집", "바", "클럽"},
		"COUPLE": {"오락실", "PC방", "노래방", "볼링"},
		"FAMILY": {"술집", "바", "클럽", "노래방", "오락실", "PC방"},
	})

	viper.SetDefault("recommendation.rules.condition_families", []map[string]interface{}{
		{
			"name":     "romance",
			"triggers": []string{"데이트", "커플", "분위기", "로맨틱", "코스"},
			"cues": []map[string]interface{}{
				{"keywords": []string{"파인다이닝", "다이닝"}, "weight": 15.0},
				{"keywords": []string{"와인", "칵테일"}, "weight": 15.0},
				{"keywords": []string{"갤러리", "미술관", "박물관"}, "weight": 15.0},
				{"keywords": []string{"공원", "자연", "산책"}, "weight": 15.0},
			},
			"boost_triggers": []string{"코스", "데이트"},
			"boost_delta":    5.0,
			"reason_phrase":  "분위기 있는 데이트 장소",
		},
		{
			"name":     "solitude",
			"triggers": []string{"혼자", "조용", "혼밥", "힐링"},
			"cues": []map[string]interface{}{
				{"keywords": []string{"도서관", "서점", "북카페"}, "weight": 15.0},
				{"keywords": []string{"조용", "한적"}, "weight": 12.0},
				{"keywords": []string{"공원", "산책"}, "weight": 10.0},
			},
			"reason_phrase": "혼자 조용히 즐기기 좋은 곳",
		},
		{
			"name":     "family",
			"triggers": []string{"가족", "아이", "아이들", "어린이", "키즈"},
			"cues": []map[string]interface{}{
				{"keywords": []string{"놀이터", "키즈", "어린이"}, "weight": 15.0},
				{"keywords": []string{"동물원", "수족관", "박물관", "과학관"}, "weight": 12.0},
				{"keywords": []string{"체육공원", "공원", "잔디"}, "weight": 10.0},
			},
			"reason_phrase": "가족이 함께 즐기기 좋은 곳",
		},
		{
			"name":     "food_quality",
			"triggers": []string{"맛집", "음식", "먹거리", "미식", "맛있는"},
			"cues": []map[string]interface{}{
				{"keywords": []string{"프리미엄", "파인다이닝", "오마카세"}, "weight": 15.0},
				{"keywords": []string{"해산물", "고기", "파스타", "스시"}, "weight": 12.0},
				{"keywords": []string{"디저트", "베이커리", "빵"}, "weight": 10.0},
			},
			"reason_phrase": "음식으로 만족할 만한 곳",
		},
	})
}
