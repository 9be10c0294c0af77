package api

import (
	"context"
	"strconv"
)

// CityQuestionList is a city question response, ordered by display_order
type CityQuestionList struct {
	List       []CityQuestion `json:"list"`
	Pagination Pagination     `json:"pagination"`
}

// QuestionnaireList is a paginated answer response
type QuestionnaireList struct {
	List       []Questionnaire `json:"list"`
	Pagination Pagination      `json:"pagination"`
}

// GetCityQuestions lists the questionnaire prompts for a city
func (c *Client) GetCityQuestions(ctx context.Context, cityID string) ([]CityQuestion, error) {
	params := map[string]string{"city_id": cityID}

	var result CityQuestionList
	if err := c.get(ctx, "/city-questions", params, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// GetMyQuestionnaires lists the current user's answers
func (c *Client) GetMyQuestionnaires(ctx context.Context, offset, limit int, currentStayOnly bool) (*QuestionnaireList, error) {
	params := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	if currentStayOnly {
		params["current_stay_only"] = "true"
	}

	var result QuestionnaireList
	if err := c.get(ctx, "/questionnaires", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateQuestionnaire submits an answer to a city question
func (c *Client) CreateQuestionnaire(ctx context.Context, req *CreateQuestionnaireRequest) (*Questionnaire, error) {
	var result Questionnaire
	if err := c.postData(ctx, "/questionnaires", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
