// Package padla provides a runtime string templating engine with pluggable
// placeholder formatters and interchangeable compiled-template backends.
//
// A template is plain text with placeholders of the form {name} or
// {name:value}. Each placeholder is resolved through the formatter registered
// under name, which receives value and a per-call target object:
//
//	engine := padla.MustNew[User]()
//	engine.MustRegister("user", padla.FormatterFunc[User](func(field string, u User) (string, error) {
//	    return u.Get(field), nil
//	}))
//	text, err := engine.Format("Hello {user:name}!", user)
//	// text: "Hello Alice!"
//
// # Syntax
//
// The prefix, suffix, delimiter and escape characters are configurable
// (defaults '{', '}', ':' and '\'). The escape character makes the next
// character literal; outside placeholders the letters t, b, n, r and f are
// translated to the matching control characters:
//
//	\{not a placeholder}   -> {not a placeholder}
//	line\nbreak            -> line<LF>break
//	{time:HH\:mm}          -> formatter "time" with value "HH:mm"
//
// Malformed placeholders are never errors: an empty body "{}", a body that
// starts with the delimiter, an unterminated placeholder and a trailing escape
// are all kept as literal text. A placeholder whose name has no formatter
// renders the unknown replacement ("<?>" by default).
//
// # Compiled templates
//
// Parse turns a template into a TextModel that can be evaluated many times,
// from many goroutines:
//
//	model, err := engine.Parse("Dear {user:name},\n")
//	text, err := model.Text(user)
//
// Models look formatters up at evaluation time, so registry changes apply to
// models that were already compiled. Three backends produce identical output:
// "segment" walks the segment list, "closure" compiles each template into a
// function specialised for its shape, "join" evaluates placeholders first and
// writes the result with a single exact-size allocation. Select one with
// WithBackend.
//
// # Stored templates
//
// TemplateStorage keeps versioned template sources in memory, on the
// filesystem (YAML), in SQLite or in PostgreSQL. A Catalog compiles stored
// templates on first use and caches them:
//
//	storage, _ := padla.OpenStorage("sqlite", "templates.db")
//	catalog, _ := padla.NewCatalog(engine, storage, padla.DefaultCatalogConfig(), logger)
//	text, err := catalog.Render(ctx, "welcome", user)
package padla
