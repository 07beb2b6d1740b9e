package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/minimalprod/erpctl/internal/erp"
)

// ListResource fetches the collection of a resource and decodes it into
// its registered shape.
func (c *Client) ListResource(ctx context.Context, r erp.Resource) (any, error) {
	data, err := c.GetRaw(ctx, r.Path)
	if err != nil {
		return nil, err
	}
	return r.DecodeList(data)
}

// GetResource fetches one item of a resource
func (c *Client) GetResource(ctx context.Context, r erp.Resource, id string) (any, error) {
	data, err := c.GetRaw(ctx, r.ItemPath(id))
	if err != nil {
		return nil, err
	}
	return r.DecodeItem(data)
}

// DepreciationCurve fetches the actual and projected depreciation of a machine
func (c *Client) DepreciationCurve(ctx context.Context, machineID string) ([]erp.DepreciationPoint, error) {
	var points []erp.DepreciationPoint
	if err := c.GetJSON(ctx, erp.MachineDepreciationChartPath(machineID), &points); err != nil {
		return nil, err
	}
	return points, nil
}

// GraphQLError is one entry of a GraphQL "errors" array
type GraphQLError struct {
	Message string `json:"message"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// ErrGraphQL wraps errors reported in a GraphQL response body
var ErrGraphQL = errors.New("graphql error")

// GraphQL posts a query to /graphql and decodes the "data" member into out
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, out any) error {
	var resp graphQLResponse
	if err := c.PostJSON(ctx, "/graphql", graphQLRequest{Query: query, Variables: variables}, &resp); err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}

	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
