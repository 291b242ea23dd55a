package actions

import (
	"strings"
)

// DefaultModuleName is the export-macro prefix used for generated classes.
const DefaultModuleName = "GAME"

// ClassTemplate describes a UCLASS skeleton.
type ClassTemplate struct {
	ClassName     string
	BaseClass     string
	ModuleName    string
	BlueprintType bool
	Blueprintable bool
	// Components become VisibleAnywhere component pointers, named after
	// the type without its prefix letter.
	Components []string
	// Functions become BlueprintCallable void methods.
	Functions []string
	// LegacyBodyMacro emits GENERATED_UCLASS_BODY for 4.x engines.
	LegacyBodyMacro bool
}

// GenerateClass renders a header for t.
func GenerateClass(t ClassTemplate) string {
	var b strings.Builder

	b.WriteString("#pragma once\n\n")
	b.WriteString("#include \"CoreMinimal.h\"\n")
	b.WriteString("#include \"" + t.BaseClass + ".h\"\n")
	b.WriteString("#include \"" + t.ClassName + ".generated.h\"\n\n")

	var specifiers []string
	if t.BlueprintType {
		specifiers = append(specifiers, "BlueprintType")
	}
	if t.Blueprintable {
		specifiers = append(specifiers, "Blueprintable")
	}
	b.WriteString("UCLASS(" + strings.Join(specifiers, ", ") + ")\n")

	b.WriteString("class " + t.ModuleName + "_API " + t.ClassName + " : public " + t.BaseClass + "\n{\n")
	if t.LegacyBodyMacro {
		b.WriteString("\tGENERATED_UCLASS_BODY()\n\n")
	} else {
		b.WriteString("\tGENERATED_BODY()\n\n")
	}

	b.WriteString("public:\n")
	b.WriteString("\t" + t.ClassName + "();\n\n")

	if t.BaseClass == "AActor" || t.BaseClass == "APawn" {
		b.WriteString("protected:\n")
		b.WriteString("\tvirtual void BeginPlay() override;\n\n")
		b.WriteString("public:\n")
		b.WriteString("\tvirtual void Tick(float DeltaTime) override;\n\n")
	}

	for _, c := range t.Components {
		b.WriteString("\tUPROPERTY(VisibleAnywhere, BlueprintReadOnly, Category = \"Components\")\n")
		b.WriteString("\tclass " + c + "* " + trimTypePrefix(c) + "Component;\n\n")
	}

	for _, fn := range t.Functions {
		b.WriteString("\tUFUNCTION(BlueprintCallable, Category = \"Gameplay\")\n")
		b.WriteString("\tvoid " + fn + "();\n\n")
	}

	b.WriteString("};")
	return b.String()
}

// trimTypePrefix drops the single-letter engine type prefix (U, A, F...).
func trimTypePrefix(name string) string {
	if len(name) > 1 {
		return name[1:]
	}
	return name
}
