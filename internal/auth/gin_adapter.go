package auth

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// commitWriter holds back the response until the session is saved, so the
// Set-Cookie header goes out with the first header or body byte.
type commitWriter struct {
	gin.ResponseWriter
	sessions  *SessionManager
	request   *http.Request
	committed bool
}

// commit saves a modified session or expires a destroyed one. It runs once.
func (w *commitWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	ctx := w.request.Context()
	switch w.sessions.Status(ctx) {
	case scs.Modified:
		token, expiry, err := w.sessions.Commit(ctx)
		if err != nil {
			log.Printf("Failed to save session for %s: %v", w.request.URL.Path, err)
			return
		}
		w.sessions.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sessions.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
	default:
		return
	}
	w.Header().Add("Vary", "Cookie")
}

func (w *commitWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *commitWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *commitWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// requestToken returns the session token carried by the request cookie.
func (sm *SessionManager) requestToken(r *http.Request) string {
	cookie, err := r.Cookie(sm.Cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SessionLoadSave loads the session into the request context and saves it
// when the response starts. Every route reading the session user sits
// behind it.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := sm.Load(c.Request.Context(), sm.requestToken(c.Request))
		if err != nil {
			log.Printf("Failed to load session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &commitWriter{ResponseWriter: c.Writer, sessions: sm, request: c.Request}
		c.Writer = w
		c.Next()

		// Handlers that never write still need the cookie.
		w.commit()
	}
}
