package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coastTrip = `{"name":"coast","waypoints":[{"name":"start","lat":"37.77","long":"-122.41"},{"name":"end","lat":"36.60","long":"-121.89"}]}`

func TestTrips(t *testing.T) {
	s := newTestServer(t)
	doge := registerUser(t, s, "doge", "1234")
	cate := registerUser(t, s, "cate", "1234")

	w := doRequest(s, "POST", "/trips/", coastTrip, withBearer(doge))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeObject(t, w)
	id, _ := created["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "coast", created["name"])
	assert.Equal(t, "doge", created["owner"])
	assert.Len(t, created["waypoints"], 2)

	t.Run("requires auth", func(t *testing.T) {
		w := doRequest(s, "GET", "/trips/"+id, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := doRequest(s, "GET", "/trips/"+id, "", withBearer(doge))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created, decodeObject(t, w))
	})

	t.Run("get with basic auth", func(t *testing.T) {
		w := doRequest(s, "GET", "/trips/"+id, "", withBasicAuth("doge", "1234"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		w := doRequest(s, "GET", "/trips/"+id, "", withBearer(cate))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())

		w = doRequest(s, "GET", "/trips/", "", withBearer(cate))
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("list", func(t *testing.T) {
		w := doRequest(s, "GET", "/trips/", "", withBearer(doge))

		assert.Equal(t, http.StatusOK, w.Code)
		trips := decodeList(t, w)
		require.Len(t, trips, 1)
		assert.Equal(t, id, trips[0]["_id"])
	})

	t.Run("update", func(t *testing.T) {
		w := doRequest(s, "PUT", "/trips/"+id, `{"name":"mountains"}`, withBearer(doge))

		assert.Equal(t, http.StatusOK, w.Code)
		updated := decodeObject(t, w)
		assert.Equal(t, "mountains", updated["name"])
		assert.Len(t, updated["waypoints"], 2)
		assert.Equal(t, id, updated["_id"])
	})

	t.Run("update with bad waypoints", func(t *testing.T) {
		w := doRequest(s, "PUT", "/trips/"+id, `{"waypoints":"nowhere"}`, withBearer(doge))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "waypoints must be a list", decodeObject(t, w)["error"])
	})

	t.Run("update by other user", func(t *testing.T) {
		w := doRequest(s, "PUT", "/trips/"+id, `{"name":"stolen"}`, withBearer(cate))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doRequest(s, "DELETE", "/trips/"+id, "", withBearer(doge))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "mountains", decodeObject(t, w)["name"])

		w = doRequest(s, "GET", "/trips/"+id, "", withBearer(doge))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(s, "DELETE", "/trips/"+id, "", withBearer(doge))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTrips_NotFound(t *testing.T) {
	s := newTestServer(t)
	doge := registerUser(t, s, "doge", "1234")

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			w := doRequest(s, method, "/trips/missing", `{}`, withBearer(doge))

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.JSONEq(t, `{"data":[]}`, w.Body.String())
		})
	}
}

func TestCreateTrip_Invalid(t *testing.T) {
	s := newTestServer(t)
	doge := registerUser(t, s, "doge", "1234")

	w := doRequest(s, "POST", "/trips/", `{"name":42}`, withBearer(doge))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s, "POST", "/trips/", `{"waypoints":[1]}`, withBearer(doge))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "waypoint 0 must be an object", decodeObject(t, w)["error"])
}
