package manifest

// Ecosystems named in the default registry.
const (
	EcosystemJavaScript = "javascript"
	EcosystemPython     = "python"
	EcosystemCPP        = "cpp"
	EcosystemRust       = "rust"
	EcosystemGo         = "go"
	EcosystemRuby       = "ruby"
	EcosystemJava       = "java"
)

// Default returns a registry covering the common manifests of the
// JavaScript, Python, C/C++, Rust, Go, Ruby and Java ecosystems.
func Default() *Registry {
	r := NewRegistry()

	// JavaScript / TypeScript
	r.Register("package.json", EcosystemJavaScript, JSONParser{Sections: NPMSections})
	r.Register("bower.json", EcosystemJavaScript, JSONParser{Sections: NPMSections})

	// Python
	r.Register("requirements.txt", EcosystemPython, RequirementsParser{})
	r.Register("requirements-*.txt", EcosystemPython, RequirementsParser{})
	r.Register("pyproject.toml", EcosystemPython, TOMLParser{})
	r.Register("Pipfile", EcosystemPython, TOMLParser{Tables: []string{"packages", "dev-packages"}})
	r.Register("environment.yml", EcosystemPython, YAMLParser{})
	r.Register("conda.yml", EcosystemPython, YAMLParser{})
	r.Register("setup.py", EcosystemPython, PlainParser{})
	r.Register("tox.ini", EcosystemPython, INIParser{Section: "testenv", Field: "deps"})

	// C / C++
	for _, name := range []string{
		"CMakeLists.txt", "Makefile", "configure.ac", "configure.in", "config.m4",
		"conanfile.txt", "conanfile.py", "meson.build", "xmake.lua", "Brewfile",
	} {
		r.Register(name, EcosystemCPP, PlainParser{})
	}
	r.Register("vcpkg.json", EcosystemCPP, JSONParser{Sections: []string{"dependencies"}})

	// Rust
	r.Register("Cargo.toml", EcosystemRust, TOMLParser{Tables: []string{"dependencies", "dev-dependencies", "build-dependencies"}})

	// Go
	r.Register("go.mod", EcosystemGo, GoModParser{})
	r.Register("go.sum", EcosystemGo, GoModParser{Sum: true})
	r.Register("Gopkg.toml", EcosystemGo, TOMLParser{ArrayTables: []string{"constraint", "override"}})
	r.Register("glide.yaml", EcosystemGo, YAMLParser{Keys: []string{"import", "testImport"}})

	// Ruby
	r.Register("Gemfile", EcosystemRuby, GemfileParser{})
	r.Register("*.gemspec", EcosystemRuby, GemfileParser{})

	// Java
	r.Register("pom.xml", EcosystemJava, POMParser{})
	for _, name := range []string{"build.gradle", "build.gradle.kts", "settings.gradle", "ivy.xml"} {
		r.Register(name, EcosystemJava, PlainParser{})
	}

	return r
}
