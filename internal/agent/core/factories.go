package core

import (
	"fmt"

	"ideaforge/config"
	openai_provider "ideaforge/provider/openai"
	"ideaforge/tools/signals"
)

// Tool IDs recorded in the pipeline ledger for inference calls.
const (
	toolOpenAI = "openai_llm"
	toolAzure  = "azure_llm"
)

// newLLMBackedClient creates the inference client for the configured
// LLM provider.
func newLLMBackedClient(cfg config.LLMConfig) (InferenceClient, error) {
	completer, err := openai_provider.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	toolID := toolOpenAI
	if cfg.Provider == "azure" {
		toolID = toolAzure
	}
	return NewInferenceClient(completer, toolID), nil
}

// buildStages assembles the research chain in execution order. The
// order is fixed: each stage reads the slots its predecessors filled.
func buildStages(reg *signals.Registry, client InferenceClient, fb config.FallbacksConfig) []Stage {
	return []Stage{
		newMarketResearchStage(reg, client, fb),
		newPainPointStage(reg, client, fb),
		newPersonaStage(reg, client, fb),
		newNicheStage(reg, client, fb),
		newBusinessModelStage(client, fb),
		newValidationStage(reg, client),
	}
}
