// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/smartrouter/router/pattern"
	"rivaas.dev/smartrouter/router/route"
)

// strategies lists the router configurations every behavioral test runs
// against; both matchers must agree.
var strategies = []Strategy{StrategyUndecided, StrategyFallback}

func respond(body string) HandlerFunc {
	return func(_ *Context, _ Next) (*Response, error) {
		return Text(http.StatusOK, body), nil
	}
}

// recorder collects the order in which handlers run.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (rec *recorder) middleware(name string) HandlerFunc {
	return func(c *Context, next Next) (*Response, error) {
		rec.add(name)
		return next.Run()
	}
}

func (rec *recorder) handler(name string) HandlerFunc {
	return func(c *Context, _ Next) (*Response, error) {
		rec.add(name)
		return Text(http.StatusOK, name), nil
	}
}

func (rec *recorder) add(name string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.calls = append(rec.calls, name)
}

func (rec *recorder) take() []string {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := rec.calls
	rec.calls = nil
	return out
}

func dispatch(t *testing.T, r *Router, method, path string) *Response {
	t.Helper()
	resp, err := r.Dispatch(context.Background(), method, path)
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func TestRouter_EndToEnd(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			var id string
			r := MustNew(WithStrategy(s))
			r.GET("/api/items/:id", func(c *Context, _ Next) (*Response, error) {
				rec.add("item")
				id = c.Param("id")
				return Text(http.StatusOK, "item"), nil
			})
			r.GET("/api/items/active", rec.handler("active"))
			r.ALL("/api/*", rec.middleware("log"))

			resp := dispatch(t, r, http.MethodGet, "/api/items/active")
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, []string{"log", "active"}, rec.take())

			resp = dispatch(t, r, http.MethodGet, "/api/items/42")
			assert.Equal(t, "item", string(resp.Body))
			assert.Equal(t, []string{"log", "item"}, rec.take())
			assert.Equal(t, "42", id)

			resp = dispatch(t, r, http.MethodGet, "/api/unknown")
			assert.Equal(t, http.StatusNotFound, resp.Status)
			assert.Equal(t, []string{"log"}, rec.take())
		})
	}
}

func TestRouter_StaticPrecedence(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			r := MustNew(WithStrategy(s))
			r.GET("/users/:id", respond("param"))
			r.GET("/users/active", respond("static"))
			r.GET("/files/readme", respond("readme"))
			r.GET("/files/*", func(_ *Context, next Next) (*Response, error) {
				return next.Run()
			})

			assert.Equal(t, "static", string(dispatch(t, r, http.MethodGet, "/users/active").Body))
			assert.Equal(t, "param", string(dispatch(t, r, http.MethodGet, "/users/7").Body))
			assert.Equal(t, "readme", string(dispatch(t, r, http.MethodGet, "/files/readme").Body))
			assert.Equal(t, http.StatusNotFound, dispatch(t, r, http.MethodGet, "/files/other").Status)
		})
	}
}

func TestRouter_MiddlewareOrderAndShortCircuit(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			rec := &recorder{}
			r := MustNew(WithStrategy(s))
			r.Use(rec.middleware("first"), rec.middleware("second"))
			r.ALL("/*", func(c *Context, next Next) (*Response, error) {
				rec.add("gate")
				if c.Path() == "/private" {
					return Text(http.StatusForbidden, "denied"), nil
				}
				return next.Run()
			})
			r.ALL("/*", rec.middleware("third"))
			r.GET("/private", rec.handler("private"))
			r.GET("/public", rec.handler("public"))

			resp := dispatch(t, r, http.MethodGet, "/public")
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, []string{"first", "second", "gate", "third", "public"}, rec.take())

			resp = dispatch(t, r, http.MethodGet, "/private")
			assert.Equal(t, http.StatusForbidden, resp.Status)
			assert.Equal(t, []string{"first", "second", "gate"}, rec.take())
		})
	}
}

func TestRouter_DoubleContinuation(t *testing.T) {
	t.Parallel()

	handled := false
	r := MustNew(WithErrorHandler(func(_ *Context, _ error) *Response {
		handled = true
		return Text(http.StatusInternalServerError, "handled")
	}))
	r.Use(func(c *Context, next Next) (*Response, error) {
		if _, err := next.Run(); err != nil {
			return nil, err
		}
		return next.Run()
	})
	r.GET("/x", respond("x"))

	resp, err := r.Dispatch(context.Background(), http.MethodGet, "/x")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.False(t, handled, "double continuation must bypass the error handler")
	assert.ErrorIs(t, err, ErrDoubleContinuation)

	var dce *DoubleContinuationError
	require.ErrorAs(t, err, &dce)
	assert.Equal(t, "/*", dce.Route)
	assert.Equal(t, "/x", dce.Path)
	assert.Equal(t, http.MethodGet, dce.Method)
}

func TestRouter_ConstraintFallthrough(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			var got string
			r := MustNew(WithStrategy(s))
			r.GET("/items/:id{[0-9]+}", func(c *Context, _ Next) (*Response, error) {
				got = c.Param("id")
				return Text(http.StatusOK, "numeric"), nil
			})
			r.GET("/items/:slug", respond("slug"))

			assert.Equal(t, "numeric", string(dispatch(t, r, http.MethodGet, "/items/42").Body))
			assert.Equal(t, "42", got)
			assert.Equal(t, "slug", string(dispatch(t, r, http.MethodGet, "/items/abc").Body))
		})
	}
}

func TestRouter_ConstraintWithoutAlternative(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			r := MustNew(WithStrategy(s))
			r.GET("/items/:id{[0-9]+}", respond("numeric"))

			assert.Equal(t, http.StatusNotFound, dispatch(t, r, http.MethodGet, "/items/abc").Status)
			assert.Equal(t, http.StatusOK, dispatch(t, r, http.MethodGet, "/items/42").Status)
		})
	}
}

func TestRouter_OptionalParam(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			type seen struct {
				b  string
				ok bool
			}
			var got seen
			r := MustNew(WithStrategy(s))
			r.GET("/a/:b?/c", func(c *Context, _ Next) (*Response, error) {
				got.b, got.ok = c.Params().Get("b")
				return NoContent(http.StatusNoContent), nil
			})

			assert.Equal(t, http.StatusNoContent, dispatch(t, r, http.MethodGet, "/a/c").Status)
			assert.Equal(t, seen{}, got)

			assert.Equal(t, http.StatusNoContent, dispatch(t, r, http.MethodGet, "/a/42/c").Status)
			assert.Equal(t, seen{b: "42", ok: true}, got)

			assert.Len(t, r.Routes(), 2, "one registration expands to two routes")
		})
	}
}

func TestRouter_PercentDecoding(t *testing.T) {
	t.Parallel()

	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			var reads []string
			r := MustNew(WithStrategy(s))
			r.Use(func(c *Context, next Next) (*Response, error) {
				return next.Run()
			})
			r.GET("/files/:name", func(c *Context, _ Next) (*Response, error) {
				for range 3 {
					reads = append(reads, c.Param("name"))
				}
				return NoContent(http.StatusOK), nil
			})

			dispatch(t, r, http.MethodGet, "/files/a%20b%2Fc")
			assert.Equal(t, []string{"a b/c", "a b/c", "a b/c"}, reads)
		})
	}
}

func TestRouter_ParamsAreScopedToFrame(t *testing.T) {
	t.Parallel()

	var outer, inner, after string
	r := MustNew()
	r.ALL("/orgs/:org/*", func(c *Context, next Next) (*Response, error) {
		outer = c.Param("org")
		resp, err := next.Run()
		after = c.Route()
		return resp, err
	})
	r.GET("/orgs/:org/repos/:repo", func(c *Context, _ Next) (*Response, error) {
		inner = c.Param("org") + "/" + c.Param("repo")
		return NoContent(http.StatusOK), nil
	})

	dispatch(t, r, http.MethodGet, "/orgs/acme/repos/web")
	assert.Equal(t, "acme", outer)
	assert.Equal(t, "acme/web", inner)
	assert.Equal(t, "/orgs/:org/*", after, "frame state is restored after next returns")
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		resp := dispatch(t, r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "Not Found", string(resp.Body))
	})

	t.Run("custom", func(t *testing.T) {
		t.Parallel()

		calls := 0
		r := MustNew(WithNotFound(func(c *Context, _ Next) (*Response, error) {
			calls++
			return Text(http.StatusTeapot, "nothing at "+c.Path()), nil
		}))
		r.Use(func(c *Context, next Next) (*Response, error) {
			return next.Run()
		})

		resp := dispatch(t, r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusTeapot, resp.Status)
		assert.Equal(t, "nothing at /missing", string(resp.Body))
		assert.Equal(t, 1, calls)
	})

	t.Run("custom without response", func(t *testing.T) {
		t.Parallel()

		r := MustNew(WithNotFound(func(_ *Context, _ Next) (*Response, error) {
			return nil, nil
		}))
		assert.Equal(t, http.StatusNotFound, dispatch(t, r, http.MethodGet, "/missing").Status)
	})

	t.Run("middleware returns nothing", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		r.Use(func(_ *Context, _ Next) (*Response, error) {
			return nil, nil
		})
		assert.Equal(t, http.StatusNotFound, dispatch(t, r, http.MethodGet, "/").Status)
	})

	t.Run("unknown method sees only ALL routes", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		r.GET("/x", respond("get"))
		r.ALL("/y", respond("all"))
		assert.Equal(t, http.StatusNotFound, dispatch(t, r, "PURGE", "/x").Status)
		assert.Equal(t, "all", string(dispatch(t, r, "PURGE", "/y").Body))
	})
}

var errBoom = errors.New("boom")

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	failing := func(_ *Context, _ Next) (*Response, error) {
		return nil, errBoom
	}

	t.Run("propagates without error handler", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := MustNew()
		r.GET("/fail", failing)
		r.ALL("/*", rec.middleware("mw"))

		resp, err := r.Dispatch(context.Background(), http.MethodGet, "/fail")
		require.ErrorIs(t, err, errBoom)
		assert.Nil(t, resp)
		assert.Equal(t, []string{"mw"}, rec.take())
	})

	t.Run("error handler produces the response", func(t *testing.T) {
		t.Parallel()

		var state State
		var seen error
		r := MustNew(WithErrorHandler(func(c *Context, err error) *Response {
			seen = err
			return Text(http.StatusBadGateway, "failed")
		}))
		r.ALL("/*", func(c *Context, next Next) (*Response, error) {
			resp, err := next.Run()
			state = c.State()
			return resp, err
		})
		r.GET("/fail", failing)

		resp := dispatch(t, r, http.MethodGet, "/fail")
		assert.Equal(t, http.StatusBadGateway, resp.Status)
		assert.ErrorIs(t, seen, errBoom)
		assert.Equal(t, StateErrored, state)
	})

	t.Run("error handler returning nil", func(t *testing.T) {
		t.Parallel()

		r := MustNew(WithErrorHandler(func(_ *Context, _ error) *Response { return nil }))
		r.GET("/fail", failing)
		assert.Equal(t, http.StatusInternalServerError, dispatch(t, r, http.MethodGet, "/fail").Status)
	})

	t.Run("error after finalized response overrides", func(t *testing.T) {
		t.Parallel()

		r := MustNew(WithErrorHandler(func(_ *Context, _ error) *Response {
			return Text(http.StatusServiceUnavailable, "override")
		}))
		r.Use(func(_ *Context, next Next) (*Response, error) {
			if _, err := next.Run(); err != nil {
				return nil, err
			}
			return nil, errBoom
		})
		r.GET("/ok", respond("ok"))

		assert.Equal(t, http.StatusServiceUnavailable, dispatch(t, r, http.MethodGet, "/ok").Status)
	})
}

func TestRouter_ResponsePrecedence(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Use(func(_ *Context, next Next) (*Response, error) {
		if _, err := next.Run(); err != nil {
			return nil, err
		}
		return Text(http.StatusOK, "stale outer"), nil
	})
	r.GET("/x", func(_ *Context, _ Next) (*Response, error) {
		return Text(http.StatusCreated, "inner"), nil
	})

	resp := dispatch(t, r, http.MethodGet, "/x")
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "inner", string(resp.Body))
}

func TestRouter_MiddlewareSeesFinalResponse(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Use(func(_ *Context, next Next) (*Response, error) {
		resp, err := next.Run()
		if resp != nil {
			resp.SetHeader("X-Wrapped", "yes")
		}
		return resp, err
	})
	r.GET("/x", respond("x"))

	resp := dispatch(t, r, http.MethodGet, "/x")
	assert.Equal(t, "yes", resp.Header.Get("X-Wrapped"))
}

func TestRouter_RegistryFinalized(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", respond("x"))
	dispatch(t, r, http.MethodGet, "/x")

	err := r.Add(http.MethodGet, "/y", respond("y"))
	require.ErrorIs(t, err, route.ErrRegistryFinalized)

	var rfe *route.RegistryFinalizedError
	require.ErrorAs(t, err, &rfe)
	assert.Equal(t, "/y", rfe.Pattern)

	assert.Panics(t, func() { r.GET("/z", respond("z")) })
}

func TestRouter_InvalidRegistration(t *testing.T) {
	t.Parallel()

	r := MustNew()
	err := r.Add(http.MethodGet, "users/:id", respond("x"))
	require.ErrorIs(t, err, pattern.ErrInvalidPattern)

	require.ErrorIs(t, r.Add(http.MethodGet, "/x", nil), ErrNilHandler)
	assert.Panics(t, func() { r.GET("/a/:id/:id", respond("x")) })
	assert.Equal(t, 0, len(r.Routes()))
}

func TestRouter_MethodCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Add("get", "/x", respond("x")))
	assert.Equal(t, http.StatusOK, dispatch(t, r, http.MethodGet, "/x").Status)
	assert.Equal(t, http.StatusOK, dispatch(t, r, "get", "/x").Status)
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Use(respond("mw"))
	r.GET("/users/:id", respond("x"))
	r.POST("/users", respond("x"))

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, route.MethodAll, routes[0].Method)
	assert.True(t, routes[0].CatchAll)
	assert.Equal(t, "/users/:id", routes[1].Path)
	assert.Equal(t, []string{"id"}, routes[1].Params)
	assert.Equal(t, http.MethodPost, routes[2].Method)
	assert.Less(t, routes[1].Score, routes[2].Score)
}

func TestRouter_SharedConstraintCache(t *testing.T) {
	t.Parallel()

	cache := pattern.NewCache()
	a := MustNew(WithConstraintCache(cache))
	b := MustNew(WithConstraintCache(cache))
	a.GET("/a/:id{[0-9]+}", respond("a"))
	b.GET("/b/:id{[0-9]+}", respond("b"))

	assert.Same(t, cache, a.ConstraintCache())
	assert.Equal(t, 1, cache.Len())

	own := MustNew()
	own.GET("/c/:id{[a-z]+}", respond("c"))
	assert.Equal(t, 1, own.ConstraintCache().Len())
	assert.NotSame(t, cache, own.ConstraintCache())
}

func TestRouter_ContextValues(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	r := MustNew()
	r.Use(func(c *Context, next Next) (*Response, error) {
		c.Set("user", "ada")
		c.SetContext(context.WithValue(c.Context(), ctxKey{}, "traced"))
		return next.Run()
	})
	r.GET("/me", func(c *Context, _ Next) (*Response, error) {
		v, _ := c.Context().Value(ctxKey{}).(string)
		return Text(http.StatusOK, c.GetString("user")+" "+v), nil
	})

	assert.Equal(t, "ada traced", string(dispatch(t, r, http.MethodGet, "/me").Body))
}

func TestRouter_Concurrent(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Use(func(c *Context, next Next) (*Response, error) {
		return next.Run()
	})
	r.GET("/users/:id", func(c *Context, _ Next) (*Response, error) {
		return Text(http.StatusOK, c.Param("id")), nil
	})

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := strings.Repeat("x", i+1)
			resp, err := r.Dispatch(context.Background(), http.MethodGet, "/users/"+id)
			assert.NoError(t, err)
			if assert.NotNil(t, resp) {
				assert.Equal(t, id, string(resp.Body))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, StrategyFast, r.Strategy())
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := New(WithStrategy(Strategy(9)))
	require.ErrorIs(t, err, ErrInvalidStrategy)

	_, err = New(WithServerTimeouts(-1, 0, 0, 0))
	require.ErrorIs(t, err, ErrServerTimeoutInvalid)

	assert.Panics(t, func() { MustNew(WithStrategy(Strategy(9))) })
}
