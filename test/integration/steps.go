package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cucumber/godog"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	username     string
	password     string
	authToken    string
	passwords    map[string]string
	trips        map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:        tc,
		passwords: make(map[string]string),
		trips:     make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetDocuments()
	})

	// Background steps
	sc.Step(`^a tripkeeper server is running$`, s.aServerIsRunning)
	sc.Step(`^a user "([^"]*)" exists with password "([^"]*)"$`, s.aUserExistsWithPassword)
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Step(`^I am not authenticated$`, s.iAmNotAuthenticated)
	sc.Step(`^I am authenticated as "([^"]*)" with password "([^"]*)"$`, s.iAmAuthenticatedWithPassword)
	sc.Step(`^I am authenticated as "([^"]*)" with a session token$`, s.iAmAuthenticatedWithToken)
	sc.Step(`^I use the session token "([^"]*)"$`, s.iUseSessionToken)

	// Request steps
	sc.Step(`^I register with username "([^"]*)" and password "([^"]*)"$`, s.iRegister)
	sc.Step(`^I send a (GET|POST|PUT|DELETE) request to "([^"]*)"$`, s.iSendRequest)
	sc.Step(`^I send a (GET|POST|PUT|DELETE) request to "([^"]*)" with body:$`, s.iSendRequestWithBody)
	sc.Step(`^I create a trip "([^"]*)"$`, s.iCreateATrip)
	sc.Step(`^I send a (GET|PUT|DELETE) request for trip "([^"]*)"$`, s.iSendRequestForTrip)
	sc.Step(`^I send a PUT request for trip "([^"]*)" with body:$`, s.iSendPutForTripWithBody)
	sc.Step(`^I log in$`, s.iLogIn)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response error should be "([^"]*)"$`, s.theResponseErrorShouldBe)
	sc.Step(`^the response should have a "([^"]*)" of "([^"]*)"$`, s.theResponseShouldHaveFieldOf)
	sc.Step(`^the response should have a "([^"]*)"$`, s.theResponseShouldHaveField)
	sc.Step(`^the response should not have a "([^"]*)"$`, s.theResponseShouldNotHaveField)
	sc.Step(`^the response should be a list of (\d+) documents?$`, s.theResponseShouldBeAListOf)
	sc.Step(`^the response should have (\d+) waypoints?$`, s.theResponseShouldHaveWaypoints)
	sc.Step(`^the response header "([^"]*)" should be '([^']*)'$`, s.theResponseHeaderShouldBe)

	// Storage steps
	sc.Step(`^the "([^"]*)" bucket should hold (\d+) documents?$`, s.theBucketShouldHold)
	sc.Step(`^the stored password for "([^"]*)" should be a bcrypt hash$`, s.theStoredPasswordShouldBeBcrypt)
}

// Background steps

func (s *StepsContext) aServerIsRunning() error {
	// Server is already running via TestContext
	return nil
}

func (s *StepsContext) aUserExistsWithPassword(username, password string) error {
	if err := s.iRegister(username, password); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to register %s: %d %s", username, s.response.StatusCode, s.responseBody)
	}
	s.passwords[username] = password
	return nil
}

func (s *StepsContext) iAmAuthenticatedAs(username string) error {
	password, ok := s.passwords[username]
	if !ok {
		return fmt.Errorf("no password known for %s", username)
	}
	return s.iAmAuthenticatedWithPassword(username, password)
}

func (s *StepsContext) iAmNotAuthenticated() error {
	s.username, s.password, s.authToken = "", "", ""
	return nil
}

func (s *StepsContext) iAmAuthenticatedWithPassword(username, password string) error {
	s.username = username
	s.password = password
	s.authToken = ""
	return nil
}

func (s *StepsContext) iAmAuthenticatedWithToken(username string) error {
	if err := s.iAmAuthenticatedAs(username); err != nil {
		return err
	}
	if err := s.iLogIn(); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %d %s", s.response.StatusCode, s.responseBody)
	}
	body, err := s.responseObject()
	if err != nil {
		return err
	}
	token, _ := body["token"].(string)
	if token == "" {
		return fmt.Errorf("login response has no token: %s", s.responseBody)
	}
	return s.iUseSessionToken(token)
}

func (s *StepsContext) iUseSessionToken(token string) error {
	s.username, s.password = "", ""
	s.authToken = token
	return nil
}

// Request steps

func (s *StepsContext) do(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case s.authToken != "":
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	case s.username != "":
		req.SetBasicAuth(s.username, s.password)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) iRegister(username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	return s.do(http.MethodPost, "/users/", body)
}

func (s *StepsContext) iSendRequest(method, path string) error {
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendRequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, []byte(body.Content))
}

func (s *StepsContext) iCreateATrip(name string) error {
	body, _ := json.Marshal(map[string]interface{}{"name": name})
	if err := s.do(http.MethodPost, "/trips/", body); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to create trip %s: %d %s", name, s.response.StatusCode, s.responseBody)
	}
	trip, err := s.responseObject()
	if err != nil {
		return err
	}
	id, _ := trip["_id"].(string)
	s.trips[name] = id
	return nil
}

func (s *StepsContext) tripPath(name string) (string, error) {
	id, ok := s.trips[name]
	if !ok {
		return "", fmt.Errorf("unknown trip %s", name)
	}
	return "/trips/" + url.PathEscape(id), nil
}

func (s *StepsContext) iSendRequestForTrip(method, name string) error {
	path, err := s.tripPath(name)
	if err != nil {
		return err
	}
	return s.do(method, path, nil)
}

func (s *StepsContext) iSendPutForTripWithBody(name string, body *godog.DocString) error {
	path, err := s.tripPath(name)
	if err != nil {
		return err
	}
	return s.do(http.MethodPut, path, []byte(body.Content))
}

func (s *StepsContext) iLogIn() error {
	return s.do(http.MethodPost, "/authn/login", nil)
}

// Response steps

func (s *StepsContext) responseObject() (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", s.responseBody)
	}
	return body, nil
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseErrorShouldBe(message string) error {
	body, err := s.responseObject()
	if err != nil {
		return err
	}
	if body["error"] != message {
		return fmt.Errorf("expected error %q, got %v", message, body["error"])
	}
	return nil
}

func (s *StepsContext) theResponseShouldHaveFieldOf(field, value string) error {
	body, err := s.responseObject()
	if err != nil {
		return err
	}
	if got := fmt.Sprint(body[field]); got != value {
		return fmt.Errorf("expected %s to be %q, got %q", field, value, got)
	}
	return nil
}

func (s *StepsContext) theResponseShouldHaveField(field string) error {
	body, err := s.responseObject()
	if err != nil {
		return err
	}
	if _, ok := body[field]; !ok {
		return fmt.Errorf("expected response to have %s: %s", field, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldNotHaveField(field string) error {
	body, err := s.responseObject()
	if err != nil {
		return err
	}
	if _, ok := body[field]; ok {
		return fmt.Errorf("expected response not to have %s: %s", field, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldBeAListOf(count int) error {
	var list []map[string]interface{}
	if err := json.Unmarshal(s.responseBody, &list); err != nil {
		return fmt.Errorf("response is not a JSON list: %s", s.responseBody)
	}
	if len(list) != count {
		return fmt.Errorf("expected %d documents, got %d", count, len(list))
	}
	return nil
}

func (s *StepsContext) theResponseShouldHaveWaypoints(count int) error {
	body, err := s.responseObject()
	if err != nil {
		return err
	}
	waypoints, _ := body["waypoints"].([]interface{})
	if len(waypoints) != count {
		return fmt.Errorf("expected %d waypoints, got %d", count, len(waypoints))
	}
	return nil
}

func (s *StepsContext) theResponseHeaderShouldBe(name, value string) error {
	if got := s.response.Header.Get(name); got != value {
		return fmt.Errorf("expected header %s to be %q, got %q", name, value, got)
	}
	return nil
}

// Storage steps

func (s *StepsContext) theBucketShouldHold(bucket string, count int) error {
	var n int64
	if err := s.tc.DB.Raw(`SELECT COUNT(*) FROM documents WHERE bucket = ?`, bucket).Scan(&n).Error; err != nil {
		return err
	}
	if n != int64(count) {
		return fmt.Errorf("expected %d documents in %s, got %d", count, bucket, n)
	}
	return nil
}

func (s *StepsContext) theStoredPasswordShouldBeBcrypt(username string) error {
	var hashes []string
	err := s.tc.DB.Raw(
		`SELECT body->>'password' FROM documents WHERE bucket = 'User' AND body->>'username' = ?`,
		username,
	).Scan(&hashes).Error
	if err != nil {
		return err
	}
	if len(hashes) != 1 {
		return fmt.Errorf("expected one stored credential for %s, got %d", username, len(hashes))
	}
	if !strings.HasPrefix(hashes[0], "$2a$12$") {
		return fmt.Errorf("stored password is not a cost 12 bcrypt hash: %q", hashes[0])
	}
	return nil
}
