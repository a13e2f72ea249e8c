package main

import (
	"testing"

	"github.com/spf13/viper"

	"minute/transcript"
)

func TestModelFlagsBound(t *testing.T) {
	flags := map[string]string{
		"live-model":    "live_model",
		"batch-model":   "batch_model",
		"summary-model": "summary_model",
		"accumulation":  "accumulation",
	}
	for flag, key := range flags {
		f := rootCmd.PersistentFlags().Lookup(flag)
		if f == nil {
			t.Errorf("flag --%s not registered", flag)
			continue
		}
		if err := rootCmd.PersistentFlags().Set(flag, "override"); err != nil {
			t.Errorf("set --%s: %v", flag, err)
			continue
		}
		if got := viper.GetString(key); got != "override" {
			t.Errorf("viper %q = %q after setting --%s, binding missing", key, got, flag)
		}
	}
}

func TestAccumulationPolicy(t *testing.T) {
	viper.Set("accumulation", "replace")
	if got := accumulationPolicy(); got != transcript.Replace {
		t.Errorf("accumulationPolicy() = %v, want Replace", got)
	}
	viper.Set("accumulation", "append")
	if got := accumulationPolicy(); got != transcript.Append {
		t.Errorf("accumulationPolicy() = %v, want Append", got)
	}
}
