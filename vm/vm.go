package vm

import "fmt"

// ---------------------------------------------------------------------------
// VM: The Kestrel object-model runtime
// ---------------------------------------------------------------------------

// Config carries the tunable limits a VM is constructed with. The zero
// value is usable; missing fields fall back to defaults.
type Config struct {
	// MaxFrameDepth bounds delegate reentrancy at the interpreter
	// boundary. Delegate bodies may recurse into further property
	// operations; this is the only guard.
	MaxFrameDepth int

	// MaxInstances bounds the instance registry.
	MaxInstances int

	// PreloadNames are extra identifiers interned into the string pool at
	// construction, after the built-in well-known set.
	PreloadNames []string
}

// DefaultMaxFrameDepth is the frame depth limit used when none is
// configured.
const DefaultMaxFrameDepth = 1024

// delegateNames caches the interned qualified-name IDs of the eight proxy
// delegate methods, all under the reserved proxy namespace.
type delegateNames struct {
	getProperty    int
	setProperty    int
	callProperty   int
	deleteProperty int
	hasProperty    int
	nextNameIndex  int
	nextName       int
	nextValue      int
}

// VM is a Kestrel object-model runtime instance.
type VM struct {
	// Global tables
	Strings *StringTable // canonical string pool
	Names   *NameTable   // qualified method name -> ID
	Globals map[string]Value

	// Well-known classes
	ObjectClass *Class
	ProxyClass  *Class
	QNameClass  *Class

	classes  map[string]*Class
	registry *InstanceRegistry

	// The reserved namespace qualifying delegate method names. Distinct
	// from any namespace reachable from script source.
	proxyNamespace Namespace

	delegates     delegateNames
	maxFrameDepth int

	// Cached pool IDs for QName trait names
	strURI       uint32
	strLocalName uint32
	strEmpty     uint32
}

// NewVM creates and bootstraps a VM with default limits.
func NewVM() *VM {
	return NewVMWithConfig(Config{})
}

// NewVMWithConfig creates and bootstraps a VM with the given limits.
func NewVMWithConfig(cfg Config) *VM {
	if cfg.MaxFrameDepth <= 0 {
		cfg.MaxFrameDepth = DefaultMaxFrameDepth
	}

	vm := &VM{
		Strings:       newStringTable(),
		Names:         NewNameTable(),
		Globals:       make(map[string]Value),
		classes:       make(map[string]*Class),
		registry:      NewInstanceRegistry(cfg.MaxInstances),
		maxFrameDepth: cfg.MaxFrameDepth,
	}

	for _, name := range cfg.PreloadNames {
		vm.Strings.Intern(name)
	}

	vm.bootstrap()
	return vm
}

// bootstrap creates the core classes and interns the delegate names.
func (vm *VM) bootstrap() {
	// The reserved namespace URI is interned but the namespace kind alone
	// keeps it unreachable from script-built multinames.
	vm.proxyNamespace = Namespace{Kind: NsProxy, URI: vm.Strings.Intern("http://kestrelvm.org/proxy")}

	vm.strURI = vm.Strings.Intern("uri")
	vm.strLocalName = vm.Strings.Intern("localName")
	vm.strEmpty = vm.Strings.Intern("")

	vm.ObjectClass = vm.NewClass("Object", nil, false)
	vm.ProxyClass = vm.newClass("Proxy", vm.ObjectClass, nil, false, KindProxy)
	vm.QNameClass = vm.NewClassWithIvars("QName", vm.ObjectClass, []string{"uri", "localName"}, true)

	d := &vm.delegates
	d.getProperty = vm.internDelegate("getProperty")
	d.setProperty = vm.internDelegate("setProperty")
	d.callProperty = vm.internDelegate("callProperty")
	d.deleteProperty = vm.internDelegate("deleteProperty")
	d.hasProperty = vm.internDelegate("hasProperty")
	d.nextNameIndex = vm.internDelegate("nextNameIndex")
	d.nextName = vm.internDelegate("nextName")
	d.nextValue = vm.internDelegate("nextValue")
}

// internDelegate interns one delegate method name under the reserved
// proxy namespace.
func (vm *VM) internDelegate(name string) int {
	return vm.Names.Intern(NewQName(vm.proxyNamespace, vm.Strings.Intern(name)))
}

// ProxyNamespace returns the reserved namespace qualifying delegate names.
func (vm *VM) ProxyNamespace() Namespace {
	return vm.proxyNamespace
}

// MaxFrameDepth returns the configured call depth limit.
func (vm *VM) MaxFrameDepth() int {
	return vm.maxFrameDepth
}

// Registry returns the instance arena.
func (vm *VM) Registry() *InstanceRegistry {
	return vm.registry
}

// ---------------------------------------------------------------------------
// Class construction
// ---------------------------------------------------------------------------

// NewClass creates and registers a class of plain instances with no
// declared trait variables.
func (vm *VM) NewClass(name string, super *Class, sealed bool) *Class {
	return vm.newClass(name, super, nil, sealed, KindScript)
}

// NewClassWithIvars creates and registers a class of plain instances with
// declared trait variables.
func (vm *VM) NewClassWithIvars(name string, super *Class, ivars []string, sealed bool) *Class {
	return vm.newClass(name, super, ivars, sealed, KindScript)
}

// NewProxyClass creates and registers a class whose instances intercept
// property operations. The superclass defaults to Proxy when nil.
func (vm *VM) NewProxyClass(name string, super *Class, sealed bool) *Class {
	if super == nil {
		super = vm.ProxyClass
	}
	return vm.newClass(name, super, nil, sealed, KindProxy)
}

func (vm *VM) newClass(name string, super *Class, ivars []string, sealed bool, kind ObjectKind) *Class {
	numSlots := len(ivars)
	if super != nil {
		numSlots += super.NumSlots
		if kind == KindScript {
			kind = super.kind // proxy-ness is inherited
		}
	}

	c := &Class{
		Name:       name,
		Namespace:  PublicNamespace(),
		Superclass: super,
		Sealed:     sealed,
		InstVars:   ivars,
		NumSlots:   numSlots,
		kind:       kind,
	}

	var parentVT *VTable
	if super != nil {
		parentVT = super.vtable
	}
	c.vtable = NewVTable(c, parentVT)

	vm.classes[name] = c
	return c
}

// LookupClass returns a registered class by name, or nil.
func (vm *VM) LookupClass(name string) *Class {
	return vm.classes[name]
}

// Classes returns the registered class names in no particular order.
func (vm *VM) Classes() []string {
	names := make([]string, 0, len(vm.classes))
	for name := range vm.classes {
		names = append(names, name)
	}
	return names
}

// ---------------------------------------------------------------------------
// Instance allocation
// ---------------------------------------------------------------------------

// NewInstance allocates a fresh instance of a class with all trait slots
// initialized to Undefined. Registry failures propagate unchanged.
func (vm *VM) NewInstance(class *Class) (*ScriptObject, error) {
	if class == nil {
		return nil, fmt.Errorf("vm: cannot instantiate nil class")
	}
	return vm.registry.Allocate(class)
}

// StringValue interns string content and returns it as a Value.
func (vm *VM) StringValue(s string) Value {
	return vm.Strings.StringValue(s)
}

// StringContent returns the pool content of a string value, or "".
func (vm *VM) StringContent(v Value) string {
	if !v.IsString() {
		return ""
	}
	return vm.Strings.Name(v.StringID())
}

// InstanceOf returns the instance storage referenced by a value, or nil.
func (vm *VM) InstanceOf(v Value) *ScriptObject {
	if !v.IsObject() {
		return nil
	}
	return vm.registry.Get(v.ObjectID())
}

// InstanceClass returns the class definition of the instance a value
// references, or nil for non-objects.
func (vm *VM) InstanceClass(v Value) *Class {
	obj := vm.InstanceOf(v)
	if obj == nil {
		return nil
	}
	return obj.class
}
