package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"shipgate/internal/gateway"
	"shipgate/internal/model"
)

// RefreshPath is the endpoint the gateway calls to renew an expired session.
const RefreshPath = "/profile/refresh"

var ErrBackendRejected = errors.New("backend rejected request")

// Client is the typed surface of the remote aggregator backend. Every
// request goes through the gateway, which owns cookies and the one-shot
// 401 refresh.
type Client struct {
	gw *gateway.Client
}

func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileResponse struct {
	User model.User `json:"user"`
}

func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var resp profileResponse
	if err := c.gw.DoJSON(ctx, http.MethodGet, "/profile", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/login", creds, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (c *Client) Signup(ctx context.Context, creds Credentials) error {
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/signup", creds, nil); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

type pickupAddressesResponse struct {
	Status bool     `json:"status"`
	Data   []string `json:"data"`
}

func (c *Client) PickupAddresses(ctx context.Context) ([]string, error) {
	var resp pickupAddressesResponse
	if err := c.gw.DoJSON(ctx, http.MethodGet, "/fetchAllPickupAddress", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch pickup addresses: %w", err)
	}
	if !resp.Status {
		return nil, ErrBackendRejected
	}
	return resp.Data, nil
}

type pickupPincodeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Pincode string `json:"pincode"`
	} `json:"data"`
}

func (c *Client) PickupPincode(ctx context.Context, addressName string) (string, error) {
	path := "/fetchPickupLocationPicode?addressName=" + url.QueryEscape(addressName)
	var resp pickupPincodeResponse
	if err := c.gw.DoJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", fmt.Errorf("fetch pickup pincode: %w", err)
	}
	if !resp.Status {
		return "", ErrBackendRejected
	}
	return resp.Data.Pincode, nil
}

// RTOAddress is the alternate return-to-origin address attached to a pickup
// location. Field names are the backend's own.
type RTOAddress struct {
	AddressName   string `json:"rto_address_name"`
	ContactName   string `json:"rto_contact_name"`
	ContactNumber string `json:"rto_contact_number"`
	Email         string `json:"rto_email"`
	AddressLine   string `json:"rto_address_line"`
	AddressLine2  string `json:"rto_address_line2"`
	City          string `json:"rto_city"`
	Pincode       string `json:"rto_pincode"`
	GSTIN         string `json:"rto_gstin"`
}

// PickupLocation is the POST /create/pickup_location payload. The RTO block
// goes out empty unless UseAltRTOAddress is set.
type PickupLocation struct {
	AddressName      string     `json:"address_name"`
	ContactName      string     `json:"contact_name"`
	ContactNumber    string     `json:"contact_number"`
	Email            string     `json:"email"`
	AddressLine      string     `json:"address_line"`
	AddressLine2     string     `json:"address_line2"`
	City             string     `json:"city"`
	Pincode          string     `json:"pincode"`
	GSTIN            string     `json:"gstin"`
	DropshipLocation bool       `json:"dropship_location"`
	UseAltRTOAddress bool       `json:"use_alt_rto_address"`
	CreateRTOAddress RTOAddress `json:"create_rto_address"`
}

type createPickupResponse struct {
	Message string `json:"message"`
}

func (c *Client) CreatePickupLocation(ctx context.Context, loc PickupLocation) (string, error) {
	if !loc.UseAltRTOAddress {
		loc.CreateRTOAddress = RTOAddress{}
	}
	var resp createPickupResponse
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/create/pickup_location", loc, &resp); err != nil {
		return "", fmt.Errorf("create pickup location: %w", err)
	}
	return resp.Message, nil
}
