package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			wantErr: false,
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"PORT":             "9000",
				"HOST":             "127.0.0.1",
				"ALLOWED_ORIGINS":  "http://example.com,http://localhost:8080",
				"GAME_MAX_ATTEMPTS": "8",
				"GAME_WORD_LENGTH":  "6",
				"DEBUG_MODE":       "true",
			},
			wantErr: false,
		},
		{
			name: "invalid port",
			envVars: map[string]string{
				"PORT": "invalid",
			},
			wantErr: true,
		},
		{
			name: "port out of range",
			envVars: map[string]string{
				"PORT": "99999",
			},
			wantErr: true,
		},
		{
			name: "word length out of range",
			envVars: map[string]string{
				"GAME_WORD_LENGTH": "20",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.envVars {
					os.Unsetenv(key)
				}
			}()

			config, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && config == nil {
				t.Fatal("Load() returned nil config")
			}
		})
	}
}

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"use default when env not set", "TEST_STRING", "default", "", "default"},
		{"use env value when set", "TEST_STRING", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvString(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	os.Setenv("TEST_INT", "42")
	defer os.Unsetenv("TEST_INT")

	if got := getEnvInt("TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt() = %v, want 42", got)
	}

	if got := getEnvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("getEnvInt() default = %v, want 7", got)
	}
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GameConfig
		wantErr bool
	}{
		{"valid", GameConfig{MaxAttempts: 6, WordLength: 5}, false},
		{"zero max attempts", GameConfig{MaxAttempts: 0, WordLength: 5}, true},
		{"word length too short", GameConfig{MaxAttempts: 6, WordLength: 3}, true},
		{"word length too long", GameConfig{MaxAttempts: 6, WordLength: 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGameConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGameConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
