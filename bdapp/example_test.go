package bdapp_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
)

func ExampleSecretGuard() {
	secrets := staticSecrets{"ops": `{"token":"t0k3n"}`}

	d := bdispatch.New(bdispatch.NewPathRouter(nil, bdispatch.Table{
		{Key: "/ops", Target: (&bdapp.SecretGuard{
			Reader:   secrets,
			SecretID: "ops",
			JSONPath: "token",
			Next:     bdispatch.Text("dashboard"),
		}).Target()},
	}))

	for _, auth := range []string{"", "Bearer guess", "Bearer t0k3n"} {
		req := httptest.NewRequest(http.MethodGet, "/ops", nil)
		req.Header.Set("Authorization", auth)

		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, req)
		fmt.Println(rec.Code, rec.Body.String())
	}
	// Output:
	// 401 401 Unauthorized
	// 403 403 Forbidden
	// 200 dashboard
}
