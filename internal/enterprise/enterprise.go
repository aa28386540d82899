// Package enterprise installs the premium form fields into the plugin
// registry.
package enterprise

import (
	"github.com/auditkit/revision-service/internal/config"
	"github.com/auditkit/revision-service/internal/plugins"
)

// CacheTTLField lets questions and dashboards override their result cache duration.
var CacheTTLField = plugins.FormField{Name: "cache_ttl", Type: plugins.FieldInteger}

// Fields returns the form fields cfg enables.
func Fields(cfg config.EnterpriseConfig) []plugins.FormField {
	if !cfg.CacheTTLFieldEnabled() {
		return nil
	}
	return []plugins.FormField{CacheTTLField}
}

// Install registers the enabled fields. It reports whether anything was installed.
func Install(cfg config.EnterpriseConfig, registry *plugins.Registry) bool {
	fields := Fields(cfg)
	if len(fields) == 0 {
		return false
	}
	registry.Install(fields...)
	return true
}
