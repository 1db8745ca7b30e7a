package collab

import (
	"context"
	"net/http"
	"strings"
)

const DefaultRegion = "RU"

type ProvisionRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Region      string `json:"region"`
}

// ProfileProvisioner creates the profile that goes with a new account.
type ProfileProvisioner interface {
	Provision(ctx context.Context, userID, email string) error
}

type ProfileClient struct {
	client *Client
}

func NewProfileClient(client *Client) *ProfileClient {
	return &ProfileClient{client: client}
}

func (c *ProfileClient) Provision(ctx context.Context, userID, email string) error {
	return c.client.Do(ctx, http.MethodPost, "/internal/profiles", ProvisionRequest{
		UserID:      userID,
		DisplayName: DisplayNameFromEmail(email),
		Region:      DefaultRegion,
	}, nil)
}

// DisplayNameFromEmail is the local part of the address.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
