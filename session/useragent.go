package session

import (
	"fmt"
	"regexp"
	"strings"
)

// UserAgentComponents assembles an RFC 7231 style user-agent string of the
// form "service/version (organization environment) sysinfo".
type UserAgentComponents struct {
	ServiceName  string
	Version      string
	Organization string
	Environment  string
	SysInfo      string
}

var userAgentPattern = regexp.MustCompile(
	`^(\S.+?)/(\S.+?) \((\S.+?) (\S.+?)\)(?: ?(.*))$`)

// Format renders and validates the user-agent string. Components that
// produce an invalid string (e.g. empty fields) yield a configuration
// error.
func (c *UserAgentComponents) Format() (string, error) {
	s := strings.TrimSpace(fmt.Sprintf("%s/%s (%s %s) %s",
		c.ServiceName, c.Version, c.Organization, c.Environment, c.SysInfo))
	if !userAgentPattern.MatchString(s) {
		return "", NewConfigurationError("user-agent string is not valid")
	}
	return s, nil
}
