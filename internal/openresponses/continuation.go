package openresponses

// ExpandInput implements the conversation-continuation projection of
// spec.md §4.7: given the input and response stored under a
// previous_response_id, and the new input items the caller just supplied,
// build the full input sequence for this turn.
//
// Each stored output item is projected back into an input item:
// message.output_text becomes message.input_text, and function_call
// becomes function_call_output with an empty placeholder output the
// caller is expected to have filled via a separate turn. The result is
// storedInput, then the projected outputs, then newInput, in that order.
func ExpandInput(storedInput []InputItem, storedResponse Response, newInput []InputItem) []InputItem {
	expanded := make([]InputItem, 0, len(storedInput)+len(storedResponse.Output)+len(newInput))
	expanded = append(expanded, storedInput...)

	for _, item := range storedResponse.Output {
		switch item.Type {
		case ItemTypeMessage:
			parts := make([]InputContentPart, 0, len(item.Content))
			for _, part := range item.Content {
				if part.Type == ContentTypeOutputText {
					parts = append(parts, InputContentPart{Type: ContentTypeInputText, Text: part.Text})
				}
			}
			expanded = append(expanded, InputItem{
				Type:    ItemTypeMessage,
				Role:    item.Role,
				Content: parts,
			})

		case ItemTypeFunctionCall:
			expanded = append(expanded, InputItem{
				Type:   ItemTypeFunctionCallOut,
				CallID: item.CallID,
				Output: "",
			})
		}
	}

	return append(expanded, newInput...)
}
