package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "logos", cfg.Output.Folder)
	require.Equal(t, 256, cfg.Output.Size)
	require.Equal(t, 24, cfg.Output.MinSourceSize)
	require.Zero(t, cfg.Output.MaxUpscale)
	require.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	require.Equal(t, 3, cfg.HTTP.MaxRetries)
	require.Equal(t, time.Second, cfg.HTTP.RetryDelay)
	require.Equal(t, 300, cfg.Batch.Size)
	require.Equal(t, 4, cfg.Batch.Workers)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, "progress.json", cfg.State.ProgressFile)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("output.size", 128)
	v.Set("http.timeout", "30s")
	v.Set("batch.workers", 8)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.Output.Size)
	require.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	require.Equal(t, 8, cfg.Batch.Workers)
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		set  func(v *viper.Viper)
	}{
		{name: "zero output size", set: func(v *viper.Viper) { v.Set("output.size", 0) }},
		{name: "negative output size", set: func(v *viper.Viper) { v.Set("output.size", -1) }},
		{name: "empty output folder", set: func(v *viper.Viper) { v.Set("output.folder", "") }},
		{name: "zero min source size", set: func(v *viper.Viper) { v.Set("output.min_source_size", 0) }},
		{name: "negative max upscale", set: func(v *viper.Viper) { v.Set("output.max_upscale", -1.5) }},
		{name: "zero batch size", set: func(v *viper.Viper) { v.Set("batch.size", 0) }},
		{name: "zero workers", set: func(v *viper.Viper) { v.Set("batch.workers", 0) }},
		{name: "negative retries", set: func(v *viper.Viper) { v.Set("http.max_retries", -2) }},
		{name: "negative rate limit", set: func(v *viper.Viper) { v.Set("sources.clearbit.rate_limit", -1) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			tc.set(v)
			_, err := Load(v)
			require.Error(t, err)
		})
	}
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	require.Error(t, cfg.Validate())
}
