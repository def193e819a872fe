package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/piratedisplay/apimodel"
	"github.com/jypelle/piratedisplay/internal/srv/config"
	"github.com/jypelle/piratedisplay/internal/srv/event"
	"github.com/jypelle/piratedisplay/internal/tool"
	"github.com/sirupsen/logrus"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"
)

const maxRequestSize = 64 * 1024

// Api terminates the command channel: each request is handed to the request loop through
// EventChannel and its reply written back.
type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig

	closeOnce sync.Once
	closed    chan struct{}
}

func NewApi(config *config.ServerConfig) *Api {
	api := Api{
		config:       config,
		eventChannel: make(chan event.ApiEvent),
		closed:       make(chan struct{}),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				if config.ApiKey != "" && r.Header.Get("x-api-key") != config.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/command", api.commandAction).Methods("POST")
	api.apiRouter.HandleFunc("/status", api.statusAction).Methods("GET")

	headersOk := handlers.AllowedHeaders([]string{"Content-Type", "X-Api-Key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         config.Listen,
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

// Start binds the well-known address and serves in the background.
func (d *Api) Start() error {
	logrus.Infof("Start api device on %s", d.config.Listen)

	listener, err := net.Listen("tcp", d.config.Listen)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", d.config.Listen, err)
	}

	if d.config.Tls {
		created, err := tool.EnsureTlsCertificate(
			"jypelle",
			"Pirate Display Server",
			d.config.GetCompleteKeyFilename(),
			d.config.GetCompleteCertFilename(),
			[]string{"localhost", "127.0.0.1"})
		if err != nil {
			listener.Close()
			return fmt.Errorf("unable to generate cert and key files: %w", err)
		}
		if created {
			logrus.Info("Self-signed cert and key files generated")
		}
	}

	go func() {
		var err error
		if d.config.Tls {
			err = d.server.ServeTLS(listener, d.config.GetCompleteCertFilename(), d.config.GetCompleteKeyFilename())
		} else {
			err = d.server.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
	return nil
}

// StopSendingEvent shuts the http server down and releases requests waiting for the loop.
func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	d.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d.server.Shutdown(ctx)
}

// Close makes pending and future requests fail with 503 instead of waiting for the loop.
func (d *Api) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
	})
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func (d *Api) Handler() http.Handler {
	return d.server.Handler
}

func (d *Api) commandAction(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize+1))
	if err != nil {
		ErrorStatusAction(w, r, http.StatusBadRequest)
		return
	}
	if len(raw) > maxRequestSize {
		apimodel.RequestTooLargeErrorMessage.SendError(w)
		return
	}

	result, ok := d.send(r.Context(), event.ApiEventCommandData{Raw: raw})
	if !ok {
		ErrorStatusAction(w, r, http.StatusServiceUnavailable)
		return
	}
	writeJson(w, result)
}

func (d *Api) statusAction(w http.ResponseWriter, r *http.Request) {
	result, ok := d.send(r.Context(), event.ApiEventStatusData{})
	if !ok {
		ErrorStatusAction(w, r, http.StatusServiceUnavailable)
		return
	}
	writeJson(w, result)
}

// send hands data to the request loop and waits for its reply. Once accepted by the loop, a
// request is always answered.
func (d *Api) send(ctx context.Context, data interface{}) (interface{}, bool) {
	select {
	case <-d.closed:
		return nil, false
	default:
	}

	result := make(chan interface{}, 1)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-d.closed:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
	return <-result, true
}

func writeJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Unable to write reply: %v", err)
	}
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	apimodel.ErrorMessage{
		ErrStatusCode: status,
		ErrMessage:    title,
	}.SendError(w)
}
