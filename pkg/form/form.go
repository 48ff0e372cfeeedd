package form

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-widgetform/pkg/announce"
	"github.com/goliatone/go-widgetform/pkg/dom"
	"github.com/goliatone/go-widgetform/pkg/instance"
	"github.com/goliatone/go-widgetform/pkg/notifications"
	"github.com/goliatone/go-widgetform/pkg/observable"
	"github.com/goliatone/go-widgetform/pkg/propsync"
	"github.com/goliatone/go-widgetform/pkg/render"
	"github.com/goliatone/go-widgetform/pkg/render/template"
	"github.com/goliatone/go-widgetform/pkg/schema"
	"github.com/goliatone/go-widgetform/pkg/tick"
	"github.com/goliatone/go-widgetform/pkg/widgets"
)

// Model is the observable instance a form edits.
type Model = *observable.Value[instance.Instance]

// Control is the host widget control that owns the model.
type Control interface {
	Setting() Model
}

// State is the lifecycle state of a Form.
type State int

const (
	StateIdle State = iota
	StateRendered
	StateDestructed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendered:
		return "rendered"
	case StateDestructed:
		return "destructed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SanitizeFunc is the pluggable sanitize step. Implementations that extend
// the default rules call f.DefaultSanitize themselves.
type SanitizeFunc func(f *Form, next, prev instance.Instance) SanitizeResult

// Strategy holds the override points of a widget type. Nil members use the
// generic behavior.
type Strategy struct {
	Sanitize             SanitizeFunc
	TemplateID           func(f *Form) string
	LinkPropertyElements func(f *Form) error
}

// Params are the construction arguments of a Form. Either Model or Control
// must be set; Container may be given directly or resolved from Root with
// ContainerSelector.
type Params struct {
	Control Control
	Model   Model

	Container         *dom.Element
	Root              *dom.Element
	ContainerSelector string

	Config    Config
	Templates template.Provider
	Schema    *schema.Schema
	Theme     *render.Theme
	Strategy  Strategy
	Controls  *widgets.Registry

	Announcer announce.Announcer
	Scheduler tick.Scheduler
	Logger    *slog.Logger
	ID        string
}

// Form is the controller binding one widget instance to its form.
type Form struct {
	id        string
	control   Control
	model     Model
	container *dom.Element
	config    Config
	defaults  instance.Instance
	templates template.Provider
	schema    *schema.Schema
	controls  *widgets.Registry
	theme     *render.Theme
	strategy  Strategy
	announcer announce.Announcer
	scheduler tick.Scheduler
	queue     *tick.Queue
	logger    *slog.Logger

	notifications   *notifications.Collection
	syncs           map[string]*propsync.Synchronizer
	syncOrder       []string
	area            *dom.Element
	noticesTemplate template.Func
	listeners       []*notifications.Listener

	state     State
	dirty     bool
	scheduled bool
	paints    int
}

// New validates params and returns an idle Form.
func New(params Params) (*Form, error) {
	model := params.Model
	if model == nil && params.Control != nil {
		model = params.Control.Setting()
	}
	if model == nil {
		return nil, ErrMissingModel
	}

	container, err := resolveContainer(params)
	if err != nil {
		return nil, err
	}

	config := params.Config
	if params.Schema != nil {
		config = applySchema(config, params.Schema)
	}
	if config.DefaultInstance == nil {
		return nil, ErrMissingDefaultInstance
	}
	if params.Templates == nil {
		return nil, ErrMissingTemplateProvider
	}
	config = config.Normalize()
	if params.Theme != nil {
		config = config.WithTheme(*params.Theme)
	}

	f := &Form{
		id:            params.ID,
		control:       params.Control,
		model:         model,
		container:     container,
		config:        config,
		defaults:      config.DefaultInstance,
		templates:     params.Templates,
		schema:        params.Schema,
		controls:      params.Controls,
		theme:         params.Theme,
		strategy:      params.Strategy,
		announcer:     params.Announcer,
		scheduler:     params.Scheduler,
		logger:        params.Logger,
		notifications: notifications.NewCollection(),
		syncs:         make(map[string]*propsync.Synchronizer),
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	if f.announcer == nil {
		f.announcer = announce.Nop{}
	}
	if f.scheduler == nil {
		f.queue = tick.NewQueue()
		f.scheduler = f.queue
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f.logger = f.logger.With("form", f.id)
	return f, nil
}

func resolveContainer(params Params) (*dom.Element, error) {
	if params.Container != nil {
		return params.Container, nil
	}
	if params.Root == nil || params.ContainerSelector == "" {
		return nil, ErrMissingContainer
	}
	el, err := params.Root.QueryOne(params.ContainerSelector)
	switch {
	case errors.Is(err, dom.ErrAmbiguous):
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousContainer, params.ContainerSelector)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrMissingContainer, err)
	}
	return el, nil
}

func applySchema(config Config, s *schema.Schema) Config {
	defaults := s.DefaultInstance()
	if config.DefaultInstance != nil {
		defaults = instance.Merge(defaults, config.DefaultInstance)
	}
	config.DefaultInstance = defaults
	if config.PlainTextFields == nil {
		if fields := s.PlainTextFields(); len(fields) > 0 {
			config.PlainTextFields = fields
		}
	}
	return config
}

// ID returns the form's unique identifier.
func (f *Form) ID() string {
	return f.id
}

// Control returns the host control, if the form was built from one.
func (f *Form) Control() Control {
	return f.control
}

// Model returns the borrowed model value.
func (f *Form) Model() Model {
	return f.model
}

// Container returns the element the form renders into.
func (f *Form) Container() *dom.Element {
	return f.container
}

// Config returns the normalized configuration.
func (f *Form) Config() Config {
	return f.config
}

// Schema returns the widget schema, if any.
func (f *Form) Schema() *schema.Schema {
	return f.schema
}

// Notifications returns the form's notification collection.
func (f *Form) Notifications() *notifications.Collection {
	return f.notifications
}

// State returns the lifecycle state.
func (f *Form) State() State {
	return f.state
}

// Logger returns the form's logger.
func (f *Form) Logger() *slog.Logger {
	return f.logger
}

// Scheduler returns the scheduler used for deferred repaints.
func (f *Form) Scheduler() tick.Scheduler {
	return f.scheduler
}

// Flush drains the form's own tick queue and reports how many callbacks ran.
// It is a no-op when the host supplied a Scheduler.
func (f *Form) Flush() int {
	if f.queue == nil {
		return 0
	}
	return f.queue.Flush()
}

// DefaultInstance returns the immutable default instance. Callers must not
// modify it.
func (f *Form) DefaultInstance() instance.Instance {
	return f.defaults
}

// GetValue returns the default instance overlaid with the model's value.
func (f *Form) GetValue() instance.Instance {
	return instance.Merge(f.defaults, f.model.Get())
}

// SetState merges partial into the model's current value, validates the
// candidate and commits it when accepted. It reports whether the candidate
// was accepted.
func (f *Form) SetState(partial instance.Instance) bool {
	candidate := instance.Merge(f.model.Get(), partial)
	validated, ok := f.Validate(candidate)
	if !ok {
		f.logger.Debug("edit rejected", "fields", partial.Keys())
		return false
	}
	if f.model.Set(validated) {
		f.logger.Debug("instance committed", "fields", partial.Keys())
	}
	return true
}

// Validate sanitizes candidate against the model's current value. Notifications
// left by the previous sanitize pass are removed first; a rejection is tagged
// and recorded. The second result is false when the candidate was rejected.
func (f *Form) Validate(candidate instance.Instance) (instance.Instance, bool) {
	result := f.Sanitize(candidate, f.model.Get())

	f.notifications.RemoveWhere(func(n *notifications.Notification) bool {
		return n.ViaSanitize
	})

	switch r := result.(type) {
	case Accepted:
		return r.Instance, true
	case Rejected:
		n := r.Notification
		if n == nil {
			n = notifications.New(CodeInvalidValue, f.config.Message("invalid_value", "Invalid value."), notifications.SeverityError)
		}
		if n.Code == "" {
			n.Code = CodeInvalidValue
		}
		n.ViaSanitize = true
		n.Origin = notifications.OriginClient
		f.notifications.Add(n.Code, n)
		return nil, false
	default:
		panic(fmt.Sprintf("form: unexpected sanitize result %T", result))
	}
}

// Sanitize runs the strategy's sanitize, or DefaultSanitize.
func (f *Form) Sanitize(next, prev instance.Instance) SanitizeResult {
	if f.strategy.Sanitize != nil {
		return f.strategy.Sanitize(f, next, prev)
	}
	return f.DefaultSanitize(next, prev)
}
