package toolbroker

import "testing"

func TestResolve_ExecutableModuleDependency(t *testing.T) {
	deps := []Dependency{
		{Kind: DependencyExecutableModule, ModuleName: "protoc-gen-go"},
	}
	tools, err := Resolve(deps, "x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	got, ok := tools["protoc-gen-go"].(BuiltTool)
	if !ok {
		t.Fatalf("expected a BuiltTool, got %#v", tools["protoc-gen-go"])
	}
	if got.RelativePath != "protoc-gen-go" {
		t.Errorf("RelativePath = %q, want %q", got.RelativePath, "protoc-gen-go")
	}
}

func TestResolve_ProductDependencyRequiresSingleExecutable(t *testing.T) {
	deps := []Dependency{
		{Kind: DependencyProduct, ProductName: "cli", ProductExecutableModules: []string{"a", "b"}},
	}
	if _, err := Resolve(deps, "x86_64-unknown-linux-gnu"); err == nil {
		t.Fatalf("expected ErrNoSuchProduct for a product with 2 executable modules")
	}

	deps = []Dependency{
		{Kind: DependencyProduct, ProductName: "cli", ProductExecutableModules: []string{"cli-main"}},
	}
	tools, err := Resolve(deps, "x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	got, ok := tools["cli"].(BuiltTool)
	if !ok || got.RelativePath != "cli-main" {
		t.Errorf("tools[cli] = %#v, want BuiltTool{RelativePath: cli-main}", tools["cli"])
	}
}

func TestResolve_BinaryModuleFiltersByHostTriple(t *testing.T) {
	deps := []Dependency{
		{
			Kind:       DependencyBinaryModule,
			ModuleName: "grpc-tools",
			Artifacts: []BinaryArtifact{
				{Triple: "x86_64-unknown-linux-gnu", Executables: []BinaryArtifactExecutable{{Name: "protoc", Path: "/opt/linux/protoc"}}},
				{Triple: "arm64-apple-macosx", Executables: []BinaryArtifactExecutable{{Name: "protoc", Path: "/opt/mac/protoc"}}},
			},
		},
	}
	tools, err := Resolve(deps, "x86_64-unknown-linux-gnu")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	got, ok := tools["protoc"].(VendedTool)
	if !ok {
		t.Fatalf("expected a VendedTool, got %#v", tools["protoc"])
	}
	if got.Path != "/opt/linux/protoc" {
		t.Errorf("Path = %q, want the linux artifact", got.Path)
	}
}

func TestResolve_EmptyTriplesVendedNeverOverwritesNonEmpty(t *testing.T) {
	result := map[string]AccessibleTool{
		"protoc": VendedTool{Name: "protoc", Path: "/opt/a/protoc", Triples: []string{"x86_64-unknown-linux-gnu"}},
	}
	merge(result, "protoc", VendedTool{Name: "protoc", Path: "/opt/b/protoc", Triples: nil})

	got := result["protoc"].(VendedTool)
	if got.Path != "/opt/a/protoc" {
		t.Errorf("empty-triples Vended entry overwrote existing entry: got path %q", got.Path)
	}
}

func TestResolve_NonEmptyTriplesVendedOverwritesEmptyRegardlessOfOrder(t *testing.T) {
	result := map[string]AccessibleTool{
		"x": VendedTool{Name: "x", Path: "/a", Triples: nil},
	}
	merge(result, "x", VendedTool{Name: "x", Path: "/b", Triples: []string{"arm64"}})

	got := result["x"].(VendedTool)
	if got.Path != "/b" {
		t.Errorf("Path = %q, want %q", got.Path, "/b")
	}
	if len(got.Triples) != 1 || got.Triples[0] != "arm64" {
		t.Errorf("Triples = %v, want [arm64]", got.Triples)
	}
}

func TestResolve_SameNameVendedEntriesConcatenateTriples(t *testing.T) {
	result := map[string]AccessibleTool{
		"protoc": VendedTool{Name: "protoc", Path: "/opt/a/protoc", Triples: []string{"x86_64-unknown-linux-gnu"}},
	}
	merge(result, "protoc", VendedTool{Name: "protoc", Path: "/opt/a/protoc", Triples: []string{"arm64-unknown-linux-gnu"}})

	got := result["protoc"].(VendedTool)
	if len(got.Triples) != 2 {
		t.Errorf("Triples = %v, want 2 concatenated entries", got.Triples)
	}
}

func TestStripVersionSuffix(t *testing.T) {
	cases := map[string]string{
		"x86_64-apple-macosx10.13": "x86_64-apple-macosx10.13", // no trailing "-<digits>" segment
		"arm64-apple-macosx-11":    "arm64-apple-macosx",
		"x86_64-unknown-linux-gnu": "x86_64-unknown-linux-gnu",
	}
	for in, want := range cases {
		if got := stripVersionSuffix(in); got != want {
			t.Errorf("stripVersionSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}
