package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

func TestOptionsMapsConfig(t *testing.T) {
	cfg := ClientConfig{
		Host:        "ch.local",
		Port:        8123,
		Database:    "energy",
		User:        "reader",
		Password:    "secret",
		UseHTTP:     true,
		AsyncInsert: true,
		MaxExecTime: 90 * time.Second,
		DialTimeout: time.Second,
		ReadTimeout: 2 * time.Second,
	}
	o := options(cfg)

	if len(o.Addr) != 1 || o.Addr[0] != "ch.local:8123" {
		t.Fatalf("addr = %v", o.Addr)
	}
	if o.Protocol != ch.HTTP {
		t.Errorf("protocol = %v, want HTTP", o.Protocol)
	}
	if o.Auth.Database != "energy" || o.Auth.Username != "reader" {
		t.Errorf("auth = %+v", o.Auth)
	}
	if o.Settings["max_execution_time"] != 90 {
		t.Errorf("max_execution_time = %v", o.Settings["max_execution_time"])
	}
	if o.Settings["async_insert"] != 1 || o.Settings["wait_for_async_insert"] != 0 {
		t.Errorf("async settings = %v", o.Settings)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatal("expected error without host")
	}
}
