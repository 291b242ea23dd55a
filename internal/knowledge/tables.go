package knowledge

const (
	includeCore        = "Engine/Source/Runtime/Core/Public"
	includeCoreUObject = "Engine/Source/Runtime/CoreUObject/Public"
	includeEngine      = "Engine/Source/Runtime/Engine/Public"
	includeClasses     = "Engine/Source/Runtime/Engine/Classes"
	includeUMG         = "Engine/Source/Runtime/UMG/Public"
)

// UE4 reflection used GENERATED_UCLASS_BODY / GENERATED_USTRUCT_BODY; UE5
// templates use GENERATED_BODY throughout.
func base427() *Profile {
	return &Profile{
		Key: Key427,
		Classes: map[string][]string{
			"AActor": {"BeginPlay", "EndPlay", "Tick", "GetActorLocation", "SetActorLocation",
				"GetWorld", "Destroy", "GetComponents", "GetRootComponent"},
			"APawn": {"PossessedBy", "UnPossessed", "GetController", "SetupPlayerInputComponent",
				"GetMovementComponent", "AddMovementInput", "AddControllerYawInput"},
			"ACharacter":      {"Jump", "StopJumping", "CanJump", "GetCharacterMovement", "LaunchCharacter"},
			"UObject":         {"GetName", "GetClass", "IsA", "GetOuter", "GetWorld", "ConditionalBeginDestroy"},
			"UActorComponent": {"BeginPlay", "EndPlay", "TickComponent", "Activate", "Deactivate", "IsActive"},
		},
		Macros: map[string]string{
			"UCLASS": "UCLASS(BlueprintType, Blueprintable)\nclass GAME_API AClassName : public AActor\n{\n\tGENERATED_UCLASS_BODY()\n\npublic:\n\tvirtual void BeginPlay() override;\n\tvirtual void Tick(float DeltaTime) override;\n};",
			"USTRUCT": "USTRUCT(BlueprintType)\nstruct FStructName\n{\n\tGENERATED_USTRUCT_BODY()\n\n\tUPROPERTY(EditAnywhere, BlueprintReadWrite)\n\tint32 Value;\n};",
			"UFUNCTION": "UFUNCTION(BlueprintCallable, Category = \"Gameplay\")\nvoid FunctionName();",
			"UPROPERTY": "UPROPERTY(EditAnywhere, BlueprintReadWrite, Category = \"Properties\")\nfloat PropertyName;",
		},
		IncludeRoots: []string{includeCore, includeCoreUObject, includeEngine},
	}
}

func base50() *Profile {
	return &Profile{
		Key: Key50,
		Classes: map[string][]string{
			"AActor": {"BeginPlay", "EndPlay", "Tick", "GetActorLocation", "SetActorLocation",
				"GetWorld", "GetActorTransform", "SetActorTransform", "Destroy",
				"GetComponents", "GetRootComponent", "FindComponentByClass"},
			"APawn": {"PossessedBy", "UnPossessed", "GetController", "SetupPlayerInputComponent",
				"AddMovementInput", "GetMovementComponent", "AddControllerYawInput",
				"AddControllerPitchInput"},
			"ACharacter": {"Jump", "StopJumping", "CanJump", "GetCharacterMovement", "LaunchCharacter",
				"Crouch", "UnCrouch", "CanCrouch"},
			"UObject": {"GetName", "GetClass", "IsA", "GetOuter", "GetWorld", "GetTypedOuter",
				"ConditionalBeginDestroy", "MarkAsGarbage"},
			"UActorComponent": {"BeginPlay", "EndPlay", "TickComponent", "Activate", "Deactivate",
				"IsActive", "RegisterComponent", "UnregisterComponent"},
		},
		Macros: map[string]string{
			"UCLASS": "UCLASS(BlueprintType, Blueprintable)\nclass GAME_API AClassName : public AActor\n{\n\tGENERATED_BODY()\n\npublic:\n\tAClassName();\n\nprotected:\n\tvirtual void BeginPlay() override;\n\npublic:\n\tvirtual void Tick(float DeltaTime) override;\n};",
			"USTRUCT": "USTRUCT(BlueprintType)\nstruct FStructName\n{\n\tGENERATED_BODY()\n\n\tUPROPERTY(EditAnywhere, BlueprintReadWrite)\n\tint32 Value = 0;\n};",
			"UFUNCTION": "UFUNCTION(BlueprintCallable, Category = \"Gameplay\")\nvoid FunctionName();",
			"UPROPERTY": "UPROPERTY(EditAnywhere, BlueprintReadWrite, Category = \"Properties\")\nfloat PropertyName = 0.0f;",
			"UENUM":     "UENUM(BlueprintType)\nenum class EEnumName : uint8\n{\n\tNone UMETA(DisplayName = \"None\"),\n\tFirst UMETA(DisplayName = \"First\"),\n\tSecond UMETA(DisplayName = \"Second\")\n};",
		},
		IncludeRoots: []string{includeCore, includeCoreUObject, includeEngine, includeClasses},
	}
}

// deltas is applied in order on top of base50.
var deltas = []Delta{
	{Key: Key51, Methods: map[string][]string{"AActor": {"GetActorNameOrLabel", "SetActorLabel"}}},
	{Key: Key52, IncludeRoots: []string{includeUMG}},
	{Key: Key53, Methods: map[string][]string{"AActor": {"GetActorGuid"}}},
	{Key: Key54},
	{Key: Key55},
}

// Version-independent fallbacks, used when a profile has no entry.

var defaultClassMethods = map[string][]string{
	"AActor":     {"BeginPlay", "EndPlay", "Tick", "GetActorLocation", "SetActorLocation"},
	"UObject":    {"GetName", "GetClass", "IsA"},
	"APawn":      {"PossessedBy", "UnPossessed", "GetController"},
	"ACharacter": {"Jump", "StopJumping", "GetCharacterMovement"},
}

var defaultMacrosUE4 = map[string]string{
	"UCLASS":    "UCLASS(BlueprintType, Blueprintable)\nclass GAME_API AClassName : public AActor\n{\n\tGENERATED_UCLASS_BODY()\n\n};",
	"USTRUCT":   "USTRUCT(BlueprintType)\nstruct FStructName\n{\n\tGENERATED_USTRUCT_BODY()\n};",
	"UFUNCTION": "UFUNCTION(BlueprintCallable, Category = \"Gameplay\")\nvoid FunctionName();",
	"UPROPERTY": "UPROPERTY(EditAnywhere, BlueprintReadWrite, Category = \"Properties\")\nfloat PropertyName;",
}

var defaultMacrosUE5 = map[string]string{
	"UCLASS":    "UCLASS(BlueprintType, Blueprintable)\nclass GAME_API AClassName : public AActor\n{\n\tGENERATED_BODY()\n\npublic:\n\tAClassName();\n\n};",
	"USTRUCT":   "USTRUCT(BlueprintType)\nstruct FStructName\n{\n\tGENERATED_BODY()\n};",
	"UFUNCTION": "UFUNCTION(BlueprintCallable, Category = \"Gameplay\")\nvoid FunctionName();",
	"UPROPERTY": "UPROPERTY(EditAnywhere, BlueprintReadWrite, Category = \"Properties\")\nfloat PropertyName;",
}
