package image

import (
	"fmt"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/kestrelvm/kestrel/vm"
)

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes an Image to CBOR bytes.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an Image from CBOR bytes.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	return &img, nil
}

// WriteFile marshals an image and writes it to a file.
func WriteFile(path string, img *Image) error {
	data, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("image: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("image: write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and unmarshals an image from a file.
func ReadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("image: read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// Verify checks an image's internal consistency: version, duplicate class
// names, and superclass references that resolve within the image or to a
// VM builtin.
func Verify(img *Image) error {
	if img.Version != FormatVersion {
		return fmt.Errorf("image: unsupported format version %d (want %d)", img.Version, FormatVersion)
	}

	defined := make(map[string]bool, len(img.Classes))
	for _, c := range img.Classes {
		if c.Name == "" {
			return fmt.Errorf("image: class with empty name")
		}
		if defined[c.Name] {
			return fmt.Errorf("image: duplicate class %s", c.Name)
		}
		defined[c.Name] = true
	}

	builtins := map[string]bool{"Object": true, "Proxy": true, "QName": true}
	for _, c := range img.Classes {
		if c.Superclass == "" {
			continue
		}
		if !defined[c.Superclass] && !builtins[c.Superclass] {
			return fmt.Errorf("image: class %s references unknown superclass %s", c.Name, c.Superclass)
		}
	}
	return nil
}

// Snapshot captures a VM's class graph and string pool into an image.
// Classes are emitted in sorted name order so canonical encoding yields
// identical bytes for identical VM states.
func Snapshot(v *vm.VM) *Image {
	img := &Image{
		Version: FormatVersion,
		Pool:    v.Strings.All(),
	}

	names := v.Classes()
	sort.Strings(names)

	for _, name := range names {
		c := v.LookupClass(name)
		def := ClassDef{
			Name:     c.Name,
			Sealed:   c.Sealed,
			Proxy:    c.Kind() == vm.KindProxy,
			InstVars: c.InstVars,
		}
		if c.Superclass != nil {
			def.Superclass = c.Superclass.Name
		}
		def.Methods = methodDefs(v, c)
		img.Classes = append(img.Classes, def)
	}
	return img
}

// methodDefs records the qualified names of a class's locally defined
// methods, in deterministic order.
func methodDefs(v *vm.VM, c *vm.Class) []MethodDef {
	local := c.VTable().LocalMethods()
	ids := make([]int, 0, len(local))
	for id := range local {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	defs := make([]MethodDef, 0, len(ids))
	for _, id := range ids {
		q, ok := v.Names.Name(id)
		if !ok {
			continue
		}
		defs = append(defs, MethodDef{
			Namespace: namespaceDef(v, q.Namespace),
			Name:      v.Strings.Name(q.Name),
		})
	}
	return defs
}

// Apply recreates an image's class graph in a VM: interns the pool,
// defines classes in dependency order, and pre-interns every method
// qualified name so dispatch IDs are warm before any code loads. Method
// bodies are not restored; the compiler installs them separately.
func Apply(img *Image, v *vm.VM) error {
	if err := Verify(img); err != nil {
		return err
	}

	for _, s := range img.Pool {
		v.Strings.Intern(s)
	}

	pending := make(map[string]ClassDef, len(img.Classes))
	for _, c := range img.Classes {
		if v.LookupClass(c.Name) != nil {
			continue // builtins and already-applied classes
		}
		pending[c.Name] = c
	}

	for len(pending) > 0 {
		progressed := false
		for name, def := range pending {
			var super *vm.Class
			if def.Superclass != "" {
				super = v.LookupClass(def.Superclass)
				if super == nil {
					continue // superclass not defined yet
				}
			}
			defineClass(v, def, super)
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("image: unresolvable superclass cycle among %d classes", len(pending))
		}
	}

	// Warm the name table for every recorded method.
	for _, def := range img.Classes {
		for _, m := range def.Methods {
			ns := runtimeNamespace(v, m.Namespace)
			v.Names.Intern(vm.NewQName(ns, v.Strings.Intern(m.Name)))
		}
	}
	return nil
}

func defineClass(v *vm.VM, def ClassDef, super *vm.Class) {
	if def.Proxy {
		v.NewProxyClass(def.Name, super, def.Sealed)
		return
	}
	if len(def.InstVars) > 0 {
		v.NewClassWithIvars(def.Name, super, def.InstVars, def.Sealed)
		return
	}
	v.NewClass(def.Name, super, def.Sealed)
}
