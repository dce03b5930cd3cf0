package config

import (
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
history:
  source: http
upstream:
  base_url: http://localhost:5000
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", c.Server.Port)
	}
	if c.Chart.BaseColor != "hsl(275, 9%, 37%)" {
		t.Errorf("base color = %q", c.Chart.BaseColor)
	}
	if c.Chart.DefaultView != "activity" {
		t.Errorf("default view = %q", c.Chart.DefaultView)
	}
	if c.Cache.TTL != 5*time.Minute {
		t.Errorf("cache ttl = %v", c.Cache.TTL)
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing environment":  "history:\n  source: http\nupstream:\n  base_url: x\n",
		"unknown source":       "environment: t\nhistory:\n  source: s3\n",
		"http without url":     "environment: t\nhistory:\n  source: http\n",
		"clickhouse no host":   "environment: t\nhistory:\n  source: clickhouse\n",
		"bad view":             minimalYAML + "chart:\n  default_view: pie\n",
		"kafka no brokers":     minimalYAML + "kafka:\n  enabled: true\n  topics:\n    insights: x\n",
		"ingest without ch":    minimalYAML + "kafka:\n  enabled: true\n  brokers: [k:9092]\n  topics:\n    partition_sums: p\n",
		"digest without kafka": minimalYAML + "logging:\n  digest:\n    enabled: true\n    topic: d\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parse([]byte(doc)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOverrideFromEnv(t *testing.T) {
	c, err := parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{
		"HISTORY_SOURCE":  "clickhouse",
		"CLICKHOUSE_HOST": "ch",
		"KAFKA_BROKERS":   "a:9092,b:9092",
		"REDIS_ADDR":      "redis:6379",
	}
	c.overrideFromEnv(func(k string) string { return env[k] })

	if c.History.Source != "clickhouse" || c.ClickHouse.Host != "ch" {
		t.Errorf("history overrides not applied: %+v", c.History)
	}
	if strings.Join(c.Kafka.Brokers, ",") != "a:9092,b:9092" || !c.Kafka.Enabled {
		t.Errorf("kafka brokers = %v enabled=%v", c.Kafka.Brokers, c.Kafka.Enabled)
	}
	if !c.Cache.Redis.Enabled || c.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("redis override not applied")
	}
}
