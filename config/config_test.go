package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()

	if c.Threshold != 5 {
		t.Errorf("default threshold should be 5 but is %d", c.Threshold)
	}

	if c.LogFile != "sample_access.log" {
		t.Errorf("default log file should be sample_access.log but is %s", c.LogFile)
	}

	if err := c.Validate(); err != nil {
		t.Errorf("default config should be valid: %s", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"threshold one", func(c *Config) { c.Threshold = 1 }, false},
		{"threshold zero", func(c *Config) { c.Threshold = 0 }, true},
		{"negative threshold", func(c *Config) { c.Threshold = -3 }, true},
		{"empty log file", func(c *Config) { c.LogFile = "" }, true},
		{"order count", func(c *Config) { c.Order = OrderCount }, false},
		{"order ip", func(c *Config) { c.Order = OrderIP }, false},
		{"empty order", func(c *Config) { c.Order = "" }, false},
		{"unknown order", func(c *Config) { c.Order = "random" }, true},
		{"dns without timeout", func(c *Config) { c.DNSServer = "127.0.0.1:53"; c.DNSTimeout = 0 }, true},
		{"dns with timeout", func(c *Config) { c.DNSServer = "127.0.0.1:53"; c.DNSTimeout = time.Second }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected an error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
		})
	}
}

func TestValidateDefaultsOrder(t *testing.T) {
	c := Default()
	c.Order = ""

	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	if c.Order != OrderSeen {
		t.Errorf("empty order should become %s but is %s", OrderSeen, c.Order)
	}
}
