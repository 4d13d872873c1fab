// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"strings"
)

// Standard monitoring types. TConfigObject is the root of every type and
// carries the attribute override methods.
var (
	TConfigObject = &Type{TypeName: "ConfigObject"}

	TCheckable = &Type{
		TypeName: "Checkable",
		Super:    TConfigObject,
		Defaults: Dict{
			"check_interval":       DecimalFromInt(300),
			"retry_interval":       DecimalFromInt(60),
			"max_check_attempts":   Int(3),
			"enable_active_checks": True,
			"enable_notifications": True,
		},
	}

	THost = &Type{
		TypeName:   "Host",
		Super:      TCheckable,
		AllowAdhoc: true,
	}

	TService = &Type{
		TypeName:   "Service",
		Super:      TCheckable,
		AllowAdhoc: true,
	}
)

func init() {
	TConfigObject.Methods = configObjectMethods
	TCheckable.Methods = checkableMethods
	THost.Methods = hostMethods
	TService.Methods = serviceMethods
}

// StandardTypes returns the standard monitoring types, supertypes first.
func StandardTypes() []*Type {
	return []*Type{TConfigObject, TCheckable, THost, TService}
}

func configObjectMethods(p *Prototype) {
	p.MustSet("modify_attribute", ObjectMethod(TConfigObject, "modify_attribute", true, 2,
		func(c Call, self *DynamicObject) (Object, error) {
			name, err := ArgAttributeName(c, 0)
			if err != nil {
				return nil, err
			}
			if err = self.ModifyAttribute(name, c.Args.GetDefault(1, Nil)); err != nil {
				return nil, err
			}
			return Nil, nil
		}))

	p.MustSet("restore_attribute", ObjectMethod(TConfigObject, "restore_attribute", true, 1,
		func(c Call, self *DynamicObject) (Object, error) {
			name, err := ArgAttributeName(c, 0)
			if err != nil {
				return nil, err
			}
			if err = self.RestoreAttribute(name); err != nil {
				return nil, err
			}
			return Nil, nil
		}))

	p.MustSet("get_attribute", ObjectMethod(TConfigObject, "get_attribute", false, 1,
		func(c Call, self *DynamicObject) (Object, error) {
			name, err := ArgAttributeName(c, 0)
			if err != nil {
				return nil, err
			}
			return self.GetAttribute(name)
		}))

	p.MustSet("is_attribute_modified", ObjectMethod(TConfigObject, "is_attribute_modified", false, 1,
		func(c Call, self *DynamicObject) (Object, error) {
			name, err := ArgAttributeName(c, 0)
			if err != nil {
				return nil, err
			}
			return Bool(self.IsAttributeModified(name)), nil
		}))

	p.MustSet("modified_attributes", ObjectMethod(TConfigObject, "modified_attributes", false, 0,
		func(_ Call, self *DynamicObject) (Object, error) {
			return self.ModifiedAttributes(), nil
		}))

	p.MustSet("name", ObjectMethod(TConfigObject, "name", false, 0,
		func(_ Call, self *DynamicObject) (Object, error) {
			return Str(self.Name()), nil
		}))

	p.MustSet("type", ObjectMethod(TConfigObject, "type", false, 0,
		func(_ Call, self *DynamicObject) (Object, error) {
			return Str(self.DynamicType().Name()), nil
		}))
}

func checkableMethods(p *Prototype) {
	p.MustSet("describe", ObjectMethod(TCheckable, "describe", false, 0,
		func(_ Call, self *DynamicObject) (Object, error) {
			return Str(describeCheckable(self, self.DynamicType().Name()+" "+self.Name())), nil
		}))
}

func hostMethods(p *Prototype) {
	p.MustSet("describe", ObjectMethod(THost, "describe", false, 0,
		func(_ Call, self *DynamicObject) (Object, error) {
			head := "Host " + self.Name()
			if addr, err := self.GetAttribute("address"); err == nil && addr != Nil {
				head += " (" + addr.ToString() + ")"
			}
			return Str(describeCheckable(self, head)), nil
		}))
}

func serviceMethods(p *Prototype) {
	p.MustSet("describe", ObjectMethod(TService, "describe", false, 0,
		func(_ Call, self *DynamicObject) (Object, error) {
			host, err := self.GetAttribute("host_name")
			if err != nil {
				return nil, err
			}
			return Str(describeCheckable(self, "Service "+host.ToString()+"!"+self.Name())), nil
		}))
}

func describeCheckable(o *DynamicObject, head string) string {
	var sb strings.Builder
	sb.WriteString(head)
	if v, err := o.GetAttribute("check_interval"); err == nil {
		sb.WriteString(", every ")
		sb.WriteString(v.ToString())
		sb.WriteString("s")
	}
	if v, err := o.GetAttribute("enable_active_checks"); err == nil && v.IsFalsy() {
		sb.WriteString(", active checks disabled")
	}
	return sb.String()
}
