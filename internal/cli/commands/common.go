package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minimalprod/erpctl/internal/cli/app"
)

// Command annotations read by the root command
const (
	// AnnotationRoute is the route a command enters; ":resource" is
	// replaced by the first argument.
	AnnotationRoute = "erpctl/route"
	// AnnotationStandalone marks commands that run without a server or session
	AnnotationStandalone = "erpctl/standalone"
)

const routeParam = ":resource"

var errNoApp = errors.New("command requires a configured server")

func routed(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[AnnotationRoute] = route
	return cmd
}

func standalone(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[AnnotationStandalone] = "true"
	return cmd
}

// IsStandalone reports whether cmd runs without building the app
func IsStandalone(cmd *cobra.Command) bool {
	return cmd.Annotations[AnnotationStandalone] == "true"
}

// RouteFor returns the route cmd enters for args, if any
func RouteFor(cmd *cobra.Command, args []string) (string, bool) {
	route, ok := cmd.Annotations[AnnotationRoute]
	if !ok {
		return "", false
	}
	if strings.Contains(route, routeParam) {
		param := ""
		if len(args) > 0 {
			param = strings.ToLower(args[0])
		}
		route = strings.ReplaceAll(route, routeParam, param)
	}
	return route, true
}

// appFrom returns the app built by the root command for this invocation
func appFrom(cmd *cobra.Command) (*app.App, error) {
	a, ok := app.FromContext(cmd.Context())
	if !ok {
		return nil, errNoApp
	}
	return a, nil
}
