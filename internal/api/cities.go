package api

import (
	"context"
	"fmt"
)

// CityList is a paginated city response
type CityList struct {
	List       []City     `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// AirshipList is a paginated airship response
type AirshipList struct {
	List       []Airship  `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// GetCities lists cities; pass activeOnly to hide coming-soon destinations
func (c *Client) GetCities(ctx context.Context, activeOnly bool) ([]City, error) {
	params := map[string]string{}
	if activeOnly {
		params["is_active"] = "true"
	}

	var result CityList
	if err := c.get(ctx, "/cities", params, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// GetCity fetches one city
func (c *Client) GetCity(ctx context.Context, cityID string) (*City, error) {
	var result City
	if err := c.getData(ctx, fmt.Sprintf("/cities/%s", cityID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAirships lists the available airships
func (c *Client) GetAirships(ctx context.Context) ([]Airship, error) {
	var result AirshipList
	if err := c.get(ctx, "/airships", nil, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}
