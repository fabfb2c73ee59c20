package providers

import "testing"

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := RegistryConfig{
		Providers: map[string]ProviderConfig{
			"gemini":   {Type: "gemini", Model: "gemini-2.0-flash", APIKey: "key1", RateLimit: 2.0, Enabled: true},
			"openai":   {Type: "openai", Model: "gpt-4o-mini", APIKey: "key2", RateLimit: 2.0, Enabled: false},
			"keyless":  {Type: "gemini", Model: "gemini-2.0-flash", APIKey: "", Enabled: true},
			"mock":     {Type: "mock", Enabled: true},
			"unknown":  {Type: "nope", APIKey: "key3", Enabled: true},
		},
	}

	r := NewRegistryFromConfig(cfg)

	if !r.Has("gemini") {
		t.Error("expected gemini to be registered")
	}
	if r.Has("openai") {
		t.Error("disabled provider should not be registered")
	}
	if r.Has("keyless") {
		t.Error("provider without API key should not be registered")
	}
	if !r.Has("mock") {
		t.Error("mock provider should be registered without API key")
	}
	if r.Has("unknown") {
		t.Error("unknown provider type should not be registered")
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", NewMockClient())

	t.Run("returns registered client", func(t *testing.T) {
		client, err := r.Get("mock")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Name() != MockClientName {
			t.Errorf("unexpected client name: %s", client.Name())
		}
	})

	t.Run("errors for unknown client", func(t *testing.T) {
		if _, err := r.Get("nope"); err == nil {
			t.Error("expected error for unknown client")
		}
	})
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", NewMockClient())
	r.Register("alpha", NewMockClient())

	names := r.List()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestRegistry_Reload(t *testing.T) {
	r := NewRegistryFromConfig(RegistryConfig{
		Providers: map[string]ProviderConfig{
			"gemini": {Type: "gemini", Model: "gemini-2.0-flash", APIKey: "key1", RateLimit: 2.0, Enabled: true},
		},
	})

	t.Run("removes dropped providers", func(t *testing.T) {
		r.Reload(RegistryConfig{Providers: map[string]ProviderConfig{}})
		if r.Has("gemini") {
			t.Error("expected gemini to be unregistered")
		}
	})

	t.Run("adds new providers", func(t *testing.T) {
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"openai": {Type: "openai", Model: "gpt-4o-mini", APIKey: "key2", RateLimit: 2.0, Enabled: true},
			},
		})
		if !r.Has("openai") {
			t.Error("expected openai to be registered")
		}
	})

	t.Run("recreates changed providers", func(t *testing.T) {
		before, _ := r.Get("openai")
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"openai": {Type: "openai", Model: "gpt-4o", APIKey: "key2", RateLimit: 2.0, Enabled: true},
			},
		})
		after, _ := r.Get("openai")
		if before == after {
			t.Error("expected client to be recreated after model change")
		}
	})

	t.Run("keeps unchanged providers", func(t *testing.T) {
		before, _ := r.Get("openai")
		r.Reload(RegistryConfig{
			Providers: map[string]ProviderConfig{
				"openai": {Type: "openai", Model: "gpt-4o", APIKey: "key2", RateLimit: 2.0, Enabled: true},
			},
		})
		after, _ := r.Get("openai")
		if before != after {
			t.Error("expected unchanged client to be kept")
		}
	})
}
