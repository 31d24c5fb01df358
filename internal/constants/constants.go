package constants

import "time"

var QlooAPIConfig = struct {
	BaseURL          string
	SearchPath       string
	InsightsPath     string
	Timeout          time.Duration
	SearchTake       int
	InsightsLimit    int
	ErrorBodyPreview int
	APIKeyHeader     string
}{
	BaseURL:          "https://hackathon.api.qloo.com",
	SearchPath:       "/search",
	InsightsPath:     "/v2/insights",
	Timeout:          10 * time.Second, // 업스트림 호출 상한
	SearchTake:       2,
	InsightsLimit:    5,
	ErrorBodyPreview: 200,
	APIKeyHeader:     "X-Api-Key",
}

var GenerationConfig = struct {
	Timeout            time.Duration
	DefaultGeminiModel string
	DefaultOpenAIModel string
}{
	Timeout:            30 * time.Second,
	DefaultGeminiModel: "gemini-2.5-flash",
	DefaultOpenAIModel: "gpt-5-mini",
}

var AIInputLimits = struct {
	MaxQueryLength int
}{
	MaxQueryLength: 500,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout:    1 * time.Hour,    // 429 Rate Limit 전용 타임아웃 (1시간)
	HealthCheckInterval: 10 * time.Minute, // Health Check 주기 (10분)
	HealthCheckTimeout:  10 * time.Second, // Health Check 타임아웃 (10초)
}

var ServerConfig = struct {
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	MaxBodyBytes      int64
}{
	ReadHeaderTimeout: 5 * time.Second,
	WriteTimeout:      60 * time.Second,
	ShutdownTimeout:   10 * time.Second,
	MaxBodyBytes:      64 << 10,
}
