package api

import "context"

// PurchaseTicket buys an airship ticket to a city
func (c *Client) PurchaseTicket(ctx context.Context, req *PurchaseTicketRequest) (*Ticket, error) {
	var result Ticket
	if err := c.postData(ctx, "/tickets", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBoardingTicket fetches the current user's active ticket, if any
func (c *Client) GetBoardingTicket(ctx context.Context) (*Ticket, error) {
	var result Ticket
	if err := c.getData(ctx, "/tickets/boarding", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
