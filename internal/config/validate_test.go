package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Servers: map[string]ServerSpec{
			"main": {
				Host: "::1",
				Port: 4433,
				Routes: map[string]RouteSpec{
					"/": {
						Methods: map[string]Action{
							"GET": {Kind: ActionText, Text: &TextAction{Body: "root", ContentType: "text/plain", Status: 200}},
						},
					},
				},
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsIPv4Host(t *testing.T) {
	cfg := validConfig()
	srv := cfg.Servers["main"]
	srv.Host = "192.0.2.1"
	cfg.Servers["main"] = srv

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrIPv4Host)
}

func TestValidate_RejectsRoutePathWithoutSlash(t *testing.T) {
	cfg := validConfig()
	srv := cfg.Servers["main"]
	srv.Routes["api"] = srv.Routes["/"]
	cfg.Servers["main"] = srv

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMalformedURL)
}

func TestValidate_RejectsBadRedirectStatus(t *testing.T) {
	cfg := validConfig()
	route := cfg.Servers["main"].Routes["/"]
	route.Methods["POST"] = Action{Kind: ActionRedirect, Redirect: &RedirectAction{To: "/x", Status: 200}}
	cfg.Servers["main"].Routes["/"] = route

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrBadStatus)
}

func TestValidate_RejectsInvalidJSONBody(t *testing.T) {
	cfg := validConfig()
	route := cfg.Servers["main"].Routes["/"]
	route.Methods["POST"] = Action{Kind: ActionJSON, JSON: &JSONAction{Body: "{not json", Status: 200}}
	cfg.Servers["main"].Routes["/"] = route

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidJSONBody)
}

func TestValidate_RejectsDuplicateBinding(t *testing.T) {
	cfg := validConfig()
	cfg.Servers["secondary"] = cfg.Servers["main"]

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrDuplicateBinding)
}

func TestValidate_RejectsEmptyConfig(t *testing.T) {
	err := (&AppConfig{}).Validate()
	require.ErrorIs(t, err, ErrMissingServer)
}
