package config

import (
	"sync"
	"time"
)

var (
	aiOnce   sync.Once
	aiConfig *AIConfig
)

type AIConfig struct {
	GeminiAPIKey   string
	GeminiModel    string
	GroqAPIKey     string
	GroqModel      string
	RequestTimeout time.Duration
}

func GetAIConfig() *AIConfig {
	aiOnce.Do(func() {
		loadEnv()

		aiConfig = &AIConfig{
			GeminiAPIKey:   getEnv("GOOGLE_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
			GroqModel:      getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			RequestTimeout: getEnvDuration("AI_REQUEST_TIMEOUT", 60*time.Second),
		}
	})
	return aiConfig
}
